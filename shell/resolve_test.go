package shell_test

import (
	"errors"
	"testing"

	"github.com/stephane-martin/mpsh/shell"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		input string
		cwd   string
		want  string
	}{
		{"..", "/a/b", "/a"},
		{"..", "/a", "/"},
		{"..", "/", "/"},
		{"../x", "/a/b", "/a/x"},
		{"../x", "/a", "/x"},
		{"../x/y", "/a/b", "/a/x/y"},
		{"lib", "/", "/lib"},
		{"lib", "/a", "/a/lib"},
		{"lib/sub", "/a", "/a/lib/sub"},
		{"/lib", "/a/b", "/lib"},
		{"/lib/", "/a/b", "/lib"},
		{"//lib//x", "/a", "/lib/x"},
		{"./x", "/a", "/a/x"},
		{"x/", "/a", "/a/x"},
		{".", "/a/b", "/a/b"},
		{"/", "/a/b", "/"},
	}
	for _, tt := range tests {
		got, err := shell.Resolve(tt.input, tt.cwd)
		if err != nil {
			t.Errorf("Resolve(%q, %q) returned error %v", tt.input, tt.cwd, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.input, tt.cwd, got, tt.want)
		}
	}
}

func TestResolveAbsoluteIgnoresCwd(t *testing.T) {
	for _, cwd := range []string{"/", "/a", "/deep/nested/dir"} {
		got, err := shell.Resolve("/lib/x.py", cwd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/lib/x.py" {
			t.Errorf("Resolve(/lib/x.py, %q) = %q", cwd, got)
		}
	}
}

func TestResolveRejectsTilde(t *testing.T) {
	for _, input := range []string{"~", "~/x", "/a/~b", "x/~"} {
		if _, err := shell.Resolve(input, "/a"); !errors.Is(err, shell.ErrNoHomeDir) {
			t.Errorf("Resolve(%q) error = %v, want ErrNoHomeDir", input, err)
		}
	}
}

func TestResolveEmptyPath(t *testing.T) {
	if _, err := shell.Resolve("", "/a"); err == nil {
		t.Error("expected an error for the empty path")
	}
}
