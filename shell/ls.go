package shell

import (
	"errors"
	"os"
	"strings"

	"github.com/ahmetb/go-linq"
	"github.com/logrusorgru/aurora"
	"github.com/mitchellh/go-homedir"
	"github.com/scylladb/go-set/strset"
)

func (s *State) ls(args []string, _ *strset.Set) error {
	dir := s.RemoteWD
	if len(args) > 1 {
		return errors.New("ls takes at most one argument")
	}
	if len(args) == 1 {
		var err error
		dir, err = Resolve(args[0], s.RemoteWD)
		if err != nil {
			return err
		}
	}
	entries, err := s.dev.List(dir)
	if err != nil {
		return err
	}
	for _, line := range FormatEntries(entries, s.colors) {
		s.info("%s", line)
	}
	return nil
}

func (s *State) lsl(args []string, showHidden bool) error {
	if len(args) > 1 {
		return errors.New("lsl takes at most one argument")
	}
	dir := s.LocalWD
	if len(args) == 1 {
		expanded, err := homedir.Expand(args[0])
		if err != nil {
			return err
		}
		dir = joinLocal(s.LocalWD, expanded)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var entries []Entry
	for _, f := range files {
		if !showHidden && strings.HasPrefix(f.Name(), ".") {
			continue
		}
		entries = append(entries, Entry{Name: f.Name(), Dir: f.IsDir()})
	}
	s.info("%s:", dir)
	if len(entries) == 0 {
		s.info("    <directory is empty>")
		return nil
	}
	for _, line := range FormatEntries(entries, s.colors) {
		s.info("    %s", line)
	}
	return nil
}

// FormatEntries renders a listing the way the shell displays it:
// directories first, each prefixed "+ ", then files prefixed "- ", both
// groups sorted by name. The wildcard expansion of rm and rmdir relies on
// the same dir/file split.
func FormatEntries(entries []Entry, au aurora.Aurora) []string {
	var sorted []Entry
	linq.From(entries).
		OrderByT(func(e Entry) int {
			if e.Dir {
				return 0
			}
			return 1
		}).
		ThenByT(func(e Entry) string { return e.Name }).
		ToSlice(&sorted)
	lines := make([]string, 0, len(sorted))
	for _, e := range sorted {
		if e.Dir {
			lines = append(lines, "+ "+au.Bold(au.Blue(e.Name)).String())
		} else {
			lines = append(lines, "- "+e.Name)
		}
	}
	return lines
}
