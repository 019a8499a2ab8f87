package shell

import (
	"fmt"
	"strings"

	"github.com/scylladb/go-set/strset"
)

// reset reboots the board. A bare rs does a soft reset back to the REPL;
// normal, safe and bootloader are relayed to boards that support staged
// reset modes.
func (s *State) reset(args []string, _ *strset.Set) error {
	mode := ResetSoft
	switch len(args) {
	case 0:
	case 1:
		switch strings.ToLower(args[0]) {
		case "soft":
			mode = ResetSoft
		case "normal":
			mode = ResetNormal
		case "safe":
			mode = ResetSafe
		case "bootloader":
			mode = ResetBootloader
		default:
			return fmt.Errorf("unknown reset mode %q (soft, normal, safe, bootloader)", args[0])
		}
	default:
		return fmt.Errorf("reset takes at most one mode argument")
	}
	if err := s.dev.Reset(mode); err != nil {
		return err
	}
	s.info("%s reset performed", mode)
	return nil
}
