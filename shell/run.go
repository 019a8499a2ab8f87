package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/scylladb/go-set/strset"
)

// runRemote executes a script already stored on the board. With -q the
// script is started without waiting for, or printing, its output — needed
// for scripts with main loops.
func (s *State) runRemote(args []string, flags *strset.Set) error {
	if len(args) != 1 {
		return errors.New("run takes one remote script path")
	}
	quiet := flags.Has("q")
	target, err := Resolve(args[0], s.RemoteWD)
	if err != nil {
		return err
	}
	src, err := s.dev.ReadFile(target)
	if err != nil {
		return err
	}
	return s.runScript(src, quiet)
}

// runLocal sends a script from the host filesystem to the board and runs
// it there, without storing it.
func (s *State) runLocal(args []string, flags *strset.Set) error {
	if len(args) != 1 {
		return errors.New("runl takes one local script path")
	}
	quiet := flags.Has("q")
	src, err := os.ReadFile(joinLocal(s.LocalWD, args[0]))
	if err != nil {
		return fmt.Errorf("failed to find or read input file: %s", args[0])
	}
	return s.runScript(src, quiet)
}

func (s *State) runScript(src []byte, quiet bool) error {
	out, err := s.dev.Run(src, !quiet, !quiet)
	if err != nil {
		return fmt.Errorf("exception raised on the device:\n%s", err)
	}
	if out != nil {
		fmt.Fprint(s.out, string(out))
	}
	return nil
}
