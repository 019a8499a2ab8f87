package shell

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/ktr0731/go-fuzzyfinder"
)

// fuzzyLocal lets the operator pick local files interactively when put got
// no argument. Aborting the finder is not an error, it just picks nothing.
func fuzzyLocal(wd string) ([]string, error) {
	var paths []string
	err := godirwalk.Walk(wd, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(wd, osPathname)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(filepath.Base(rel), ".") {
				if de.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			paths = append(paths, rel)
			return nil
		},
		ErrorCallback: func(string, error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	idx, err := fuzzyfinder.FindMulti(paths, func(i int) string {
		return paths[i]
	})
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, paths[i])
	}
	return names, nil
}
