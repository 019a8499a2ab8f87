package shell

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/scylladb/go-set/strset"
)

func (s *State) cd(args []string, _ *strset.Set) error {
	if len(args) > 1 {
		return errors.New("cd takes at most one argument")
	}
	if len(args) == 0 {
		s.RemoteWD = "/"
		return nil
	}
	dir, err := Resolve(args[0], s.RemoteWD)
	if err != nil {
		return err
	}
	// listing doubles as the existence check, there is no remote stat
	if _, err := s.dev.List(dir); err != nil {
		return err
	}
	s.RemoteWD = dir
	return nil
}

func (s *State) cdl(args []string, _ *strset.Set) error {
	if len(args) > 1 {
		return errors.New("cdl takes at most one argument")
	}
	var dir string
	var err error
	if len(args) == 0 {
		dir, err = homedir.Dir()
	} else {
		dir, err = homedir.Expand(args[0])
	}
	if err != nil {
		return err
	}
	dir = joinLocal(s.LocalWD, dir)
	if err := os.Chdir(dir); err != nil {
		return err
	}
	if dir, err = os.Getwd(); err != nil {
		return err
	}
	s.LocalWD = dir
	return nil
}

func (s *State) pwd(args []string, _ *strset.Set) error {
	if len(args) != 0 {
		return errors.New("pwd takes no argument")
	}
	s.info("local:\n    %s", s.LocalWD)
	s.info("%s:\n    %s", s.port, s.RemoteWD)
	return nil
}

// mkdir creates every directory given, making missing parents on the way
// (exists-okay); only a pre-existing leaf is reported. Failures are
// reported per operand, the returned error carries only the tally.
func (s *State) mkdir(args []string, _ *strset.Set) error {
	if len(args) == 0 {
		return errors.New("mkdir needs at least one argument")
	}
	failures := 0
	for _, name := range args {
		dir, err := Resolve(name, s.RemoteWD)
		if err != nil {
			s.errf("%s: %s", name, err)
			failures++
			continue
		}
		if err := s.mkdirAll(dir); err != nil {
			failures++
			if errors.Is(err, ErrExists) {
				s.errf("directory already exists: %s", name)
			} else {
				s.errf("%s: %s", name, err)
			}
		}
	}
	if failures > 0 {
		return fmt.Errorf("failed to create %d of %d directories", failures, len(args))
	}
	return nil
}

func (s *State) mkdirAll(dir string) error {
	segments := strings.Split(strings.Trim(dir, "/"), "/")
	partial := ""
	for _, seg := range segments[:len(segments)-1] {
		partial += "/" + seg
		if err := s.dev.Mkdir(partial, true); err != nil {
			return err
		}
	}
	return s.dev.Mkdir(dir, false)
}
