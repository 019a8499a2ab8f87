package shell

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/scylladb/go-set/strset"
)

func (s *State) get(args []string, _ *strset.Set, force bool) error {
	var remote, local string
	switch len(args) {
	case 1:
		remote = args[0]
	case 2:
		remote, local = args[0], args[1]
	default:
		return errors.New("get takes a remote path and an optional local path")
	}
	target, err := Resolve(remote, s.RemoteWD)
	if err != nil {
		return err
	}
	data, err := s.dev.ReadFile(target)
	if err != nil {
		return err
	}
	if local == "" {
		return s.display(path.Base(target), data)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(joinLocal(s.LocalWD, local), flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("local file %s already exists, use get! to overwrite", local)
		}
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(data); err != nil {
		return err
	}
	s.info("downloaded: %s (%d bytes)", local, len(data))
	return nil
}

func (s *State) display(name string, data []byte) error {
	if !isText(data) {
		return fmt.Errorf("%s looks binary (%s), pass a local path to download it", name, mimetype.Detect(data))
	}
	if err := colorize(name, data, s.out); err != nil {
		// fall back to a plain dump when no lexer fits
		fmt.Fprint(s.out, string(data))
	}
	return nil
}

func isText(data []byte) bool {
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}
