package shell

import (
	"errors"
	"path"
)

// ConflictResult tells whether a remote path exists and what it is. The
// device exposes no stat primitive; the probe lists the parent directory
// and matches on the base name.
type ConflictResult struct {
	Exists bool
	Dir    bool
}

func (s *State) probe(target string) (ConflictResult, error) {
	target = path.Clean(target)
	dir := path.Dir(target)
	entries, err := s.dev.List(dir)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ConflictResult{}, nil
		}
		return ConflictResult{}, err
	}
	for _, e := range entries {
		if path.Join(dir, e.Name) == target {
			return ConflictResult{Exists: true, Dir: e.Dir}, nil
		}
	}
	return ConflictResult{}, nil
}
