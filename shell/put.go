package shell

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/karrick/godirwalk"
	"github.com/scylladb/go-set/strset"
)

// putPlan is one pending transfer: a remote directory to create or a local
// file to upload. Plans for a tree are ordered so every directory precedes
// everything beneath it.
type putPlan struct {
	local  string
	remote string
	dir    bool
}

func (s *State) put(args []string, _ *strset.Set, force bool) error {
	var local, remote string
	switch len(args) {
	case 0:
		names, err := fuzzyLocal(s.LocalWD)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := s.putOne(name, "", force); err != nil {
				s.errf("upload %s: %s", name, err)
			}
		}
		return nil
	case 1:
		local = args[0]
	case 2:
		local, remote = args[0], args[1]
	default:
		return errors.New("put takes a local path and an optional remote path")
	}
	return s.putOne(local, remote, force)
}

func (s *State) putOne(local, remote string, force bool) error {
	localPath := joinLocal(s.LocalWD, local)
	stats, err := os.Stat(localPath)
	if err != nil {
		return err
	}

	// a target ending in / means "inside that directory, keep the name"
	base := filepath.Base(localPath)
	var target string
	switch {
	case remote == "":
		target, err = Resolve(base, s.RemoteWD)
	case strings.HasSuffix(remote, "/"):
		target, err = Resolve(strings.TrimSuffix(remote, "/")+"/"+base, s.RemoteWD)
	default:
		target, err = Resolve(remote, s.RemoteWD)
	}
	if err != nil {
		return err
	}

	var plans []putPlan
	if stats.IsDir() {
		plans, err = planTree(localPath, target)
		if err != nil {
			return err
		}
	} else if stats.Mode().IsRegular() {
		plans = []putPlan{{local: localPath, remote: target}}
	} else {
		return fmt.Errorf("not a regular file: %s", local)
	}
	return s.execPlans(plans, force)
}

// planTree walks the local tree (following links) and mirrors its exact
// shape, empty subdirectories included.
func planTree(localRoot, remoteRoot string) ([]putPlan, error) {
	var plans []putPlan
	err := godirwalk.Walk(localRoot, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(localRoot, osPathname)
			if err != nil {
				return err
			}
			target := remoteRoot
			if rel != "." {
				target = path.Join(remoteRoot, filepath.ToSlash(rel))
			}
			if de.IsDir() {
				plans = append(plans, putPlan{local: osPathname, remote: target, dir: true})
			} else if de.IsRegular() {
				plans = append(plans, putPlan{local: osPathname, remote: target})
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// execPlans runs the transfer plans in order. A conflict on a directory
// abandons that whole branch but the remaining branches continue; file
// conflicts skip only the file concerned. Failures are reported inline
// as they happen; the returned error only carries the tally, so the
// caller never repeats the per-item messages.
func (s *State) execPlans(plans []putPlan, force bool) error {
	var failed []string
	failures := 0

	skipped := func(remote string) bool {
		for _, prefix := range failed {
			if remote == prefix || strings.HasPrefix(remote, prefix+"/") {
				return true
			}
		}
		return false
	}
	fail := func(p putPlan, err error) {
		s.errf("%s: %s", p.remote, err)
		if p.dir {
			failed = append(failed, p.remote)
		}
		failures++
	}

	for _, p := range plans {
		if skipped(p.remote) {
			continue
		}
		res, err := s.probe(p.remote)
		if err != nil {
			fail(p, err)
			continue
		}
		if p.dir {
			if res.Exists && !res.Dir {
				fail(p, &ConflictError{Path: p.remote, Dir: false})
				continue
			}
			if !res.Exists {
				if err := s.dev.Mkdir(p.remote, true); err != nil {
					fail(p, err)
					continue
				}
			}
			continue
		}
		// a forced put may replace a file, never a directory
		if res.Exists && res.Dir {
			fail(p, &ConflictError{Path: p.remote, Dir: true})
			continue
		}
		if res.Exists && !force {
			fail(p, fmt.Errorf("file exists on device, use put! to overwrite"))
			continue
		}
		if err := s.upload(p.local, p.remote); err != nil {
			fail(p, err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("failed to transfer %d of %d item(s)", failures, len(plans))
	}
	return nil
}

func (s *State) upload(localPath, remote string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.info("uploading: %s -> %s", localPath, remote)
	bar := s.newBar(int64(len(data)))
	err = s.dev.WriteFile(remote, data, func(written int) {
		bar.Set64(int64(written))
	})
	bar.Finish()
	return err
}

func (s *State) newBar(size int64) *pb.ProgressBar {
	bar := pb.New64(size).SetUnits(pb.U_BYTES).SetRefreshRate(time.Second).SetMaxWidth(s.width())
	bar.ShowElapsedTime = false
	bar.ShowFinalTime = false
	bar.ShowTimeLeft = false
	bar.Output = s.out
	bar.Start()
	return bar
}
