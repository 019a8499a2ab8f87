package shell

import (
	"errors"
	"path"
	"strings"
)

// Resolve turns a path typed by the operator into an absolute device path,
// relative to the current remote directory. A leading "../" ascends one
// level from cwd before the rest of the input is applied; further leading
// "../" segments are left to normalization. Pure function of its inputs.
func Resolve(input, cwd string) (string, error) {
	if input == "" {
		return "", errors.New("empty remote path")
	}
	var p string
	switch {
	case input == "..":
		p = parentDir(cwd)
	case strings.HasPrefix(input, "../"):
		root := parentDir(cwd)
		if root == "/" {
			root = ""
		}
		p = root + input[2:]
	case !strings.HasPrefix(input, "/"):
		p = strings.TrimSuffix(cwd, "/") + "/" + input
	default:
		p = input
	}
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if strings.ContainsRune(p, '~') {
		return "", ErrNoHomeDir
	}
	return p, nil
}

func parentDir(cwd string) string {
	cwd = strings.TrimSuffix(cwd, "/")
	i := strings.LastIndexByte(cwd, '/')
	if i <= 0 {
		return "/"
	}
	return cwd[:i]
}
