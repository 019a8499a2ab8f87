package shell

import (
	"errors"
	"io"
	"path"
	"strings"
)

// resolveTargets expands the deletion operands. A lone "*" means every
// entry of the requested kind in the current remote directory; anything
// else goes through the path resolver untouched.
func (s *State) resolveTargets(params []string, dirs bool) ([]string, error) {
	if len(params) == 1 && params[0] == "*" {
		entries, err := s.dev.List(s.RemoteWD)
		if err != nil {
			return nil, err
		}
		var targets []string
		for _, e := range entries {
			if e.Dir == dirs {
				targets = append(targets, path.Join(s.RemoteWD, e.Name))
			}
		}
		return targets, nil
	}
	targets := make([]string, 0, len(params))
	for _, p := range params {
		t, err := Resolve(p, s.RemoteWD)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// remove implements rm, rm!, rmdir and rmdir!. Unforced mode confirms each
// target; ctrl-C at a confirmation abandons the rest of the batch while
// deletions already performed stand. Forced mode is best-effort over the
// whole batch.
func (s *State) remove(params []string, forced, dirs bool) error {
	if len(params) == 0 {
		if dirs {
			return errors.New("rmdir needs at least one argument, or * for every directory here")
		}
		return errors.New("rm needs at least one argument, or * for every file here")
	}
	targets, err := s.resolveTargets(params, dirs)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		if dirs {
			s.info("no directory here to delete")
		} else {
			s.info("no file here to delete")
		}
		return nil
	}
	s.info("marked for deletion: %s", strings.Join(targets, ", "))

	removed, skipped, failed := 0, 0, 0
	for _, t := range targets {
		if !forced {
			if dirs {
				s.info("delete the directory %s and everything in it?", t)
			} else {
				s.info("delete %s?", t)
			}
			answer, err := s.prompt.Prompt("(y/N) >> ")
			if errors.Is(err, ErrInterrupted) || err == io.EOF {
				s.errf("\ncancelling operation, %d remaining target(s) untouched", len(targets)-removed-skipped-failed)
				return nil
			}
			if err != nil {
				return err
			}
			if answer != "y" && answer != "yes" {
				skipped++
				continue
			}
		}
		if dirs {
			err = s.dev.RemoveTree(t, false)
		} else {
			err = s.dev.Remove(t)
		}
		if err != nil {
			failed++
			if dirs {
				s.errf("%s: %s", t, err)
			} else {
				s.errf("no such file, or file is a non-empty directory: %s", t)
			}
			continue
		}
		removed++
	}
	if skipped > 0 || failed > 0 {
		s.info("deleted %d, skipped %d, failed %d", removed, skipped, failed)
	}
	return nil
}
