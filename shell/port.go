package shell

import (
	"errors"
	"fmt"

	"github.com/scylladb/go-set/strset"
)

// portCmd shows or switches the active serial port. The swap is atomic:
// the new link must open before the old one is given up, so a failed
// switch leaves the session connected where it was.
func (s *State) portCmd(args []string, _ *strset.Set) error {
	switch len(args) {
	case 0:
		s.info("device port is:\n    %s", s.port)
		return nil
	case 1:
	default:
		return errors.New("port takes at most one argument")
	}
	dev, err := s.dial(args[0])
	if err != nil {
		return fmt.Errorf("cannot switch to %s: %s", args[0], err)
	}
	old := s.dev
	s.dev = dev
	s.port = args[0]
	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warnw("closing previous board connection", "error", err)
		}
	}
	s.info("device port changed to:\n    %s", s.port)
	return nil
}
