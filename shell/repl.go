package shell

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/scylladb/go-set/strset"
)

// repl hands the terminal over to an external serial terminal program on
// the active port, for a direct interactive REPL with the board. The
// session's own link is released for the duration, the port is exclusive.
func (s *State) repl(args []string, _ *strset.Set) error {
	if len(args) != 0 {
		return errors.New("repl takes no argument")
	}
	ex, err := exec.LookPath("tio")
	if err != nil {
		return errors.New("couldn't find tio, is it in your PATH?")
	}
	if err := s.dev.Close(); err != nil {
		s.logger.Warnw("closing board connection", "error", err)
	}
	s.dev = nil
	s.info("connecting interactively to %s (leave tio to come back)", s.port)
	c := exec.Command(ex, s.port)
	c.Dir = s.LocalWD
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	runErr := c.Run()
	s.info("leaving REPL mode")
	dev, err := s.dial(s.port)
	if err != nil {
		return fmt.Errorf("cannot reconnect to %s: %s", s.port, err)
	}
	s.dev = dev
	return runErr
}
