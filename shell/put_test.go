package shell_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stephane-martin/mpsh/shell"
)

func writeLocalTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func opIndex(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestPutTreeCreatesParentsFirst(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, filepath.Join(local, "a"), map[string]string{
		"1.py":   "print(1)\n",
		"b/2.py": "print(2)\n",
	})

	dev := newFakeDevice()
	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"put", filepath.Join(local, "a"), "/lib"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	mkLib := opIndex(dev.ops, "mkdir /lib")
	mkB := opIndex(dev.ops, "mkdir /lib/b")
	put1 := opIndex(dev.ops, "put /lib/1.py")
	put2 := opIndex(dev.ops, "put /lib/b/2.py")
	for name, i := range map[string]int{"mkdir /lib": mkLib, "mkdir /lib/b": mkB, "put /lib/1.py": put1, "put /lib/b/2.py": put2} {
		if i < 0 {
			t.Fatalf("missing operation %q in %v", name, dev.ops)
		}
	}
	if mkLib > put1 || mkLib > put2 {
		t.Errorf("root directory created after a file upload: %v", dev.ops)
	}
	if mkB > put2 {
		t.Errorf("subdirectory created after its child upload: %v", dev.ops)
	}
}

func TestPutTreeMirrorsEmptyDirectories(t *testing.T) {
	local := t.TempDir()
	if err := os.MkdirAll(filepath.Join(local, "a", "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	dev := newFakeDevice()
	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"put", filepath.Join(local, "a"), "/a"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if opIndex(dev.ops, "mkdir /a/empty") < 0 {
		t.Errorf("empty subdirectory not mirrored: %v", dev.ops)
	}
}

func TestPutTreeToleratesExistingDirectory(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, filepath.Join(local, "a"), map[string]string{"1.py": "x"})

	dev := newFakeDevice()
	dev.listings["/"] = []shell.Entry{{Name: "lib", Dir: true}}
	dev.listings["/lib"] = nil

	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"put", filepath.Join(local, "a"), "/lib"}); err != nil {
		t.Fatalf("put onto an existing directory: %v", err)
	}
	if opIndex(dev.ops, "put /lib/1.py") < 0 {
		t.Errorf("upload skipped: %v", dev.ops)
	}
}

func TestPutRefusesDirectoryConflict(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, local, map[string]string{"x.py": "x"})

	dev := newFakeDevice()
	dev.listings["/"] = []shell.Entry{{Name: "x.py", Dir: true}}

	for _, verb := range []string{"put", "put!"} {
		s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
		err := s.Dispatch([]string{verb, filepath.Join(local, "x.py")})
		if err == nil {
			t.Fatalf("%s onto a same-name directory must fail", verb)
		}
		if opIndex(dev.ops, "put /x.py") >= 0 {
			t.Fatalf("%s transferred despite the conflict: %v", verb, dev.ops)
		}
	}
}

func TestPutRefusesUnforcedOverwrite(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, local, map[string]string{"x.py": "new"})

	dev := newFakeDevice()
	dev.listings["/"] = []shell.Entry{{Name: "x.py"}}

	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"put", filepath.Join(local, "x.py")}); err == nil {
		t.Fatal("bare put must refuse to overwrite an existing file")
	}
	if opIndex(dev.ops, "put /x.py") >= 0 {
		t.Fatalf("unforced put transferred anyway: %v", dev.ops)
	}

	if err := s.Dispatch([]string{"put!", filepath.Join(local, "x.py")}); err != nil {
		t.Fatalf("put! should overwrite a file: %v", err)
	}
	if string(dev.files["/x.py"]) != "new" {
		t.Errorf("remote content = %q, want %q", dev.files["/x.py"], "new")
	}
}

func TestPutConflictReportedOnce(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, local, map[string]string{"x.py": "new"})

	dev := newFakeDevice()
	dev.listings["/"] = []shell.Entry{{Name: "x.py"}}

	prompt := &scriptPrompter{responses: lines("put " + filepath.Join(local, "x.py"))}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), "use put! to overwrite"); got != 1 {
		t.Errorf("conflict reported %d times, want once:\n%s", got, out.String())
	}
}

func TestPutTrailingSlashTargetKeepsBaseName(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, local, map[string]string{"main.py": "x"})

	dev := newFakeDevice()
	dev.listings["/lib"] = nil

	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"put", filepath.Join(local, "main.py"), "/lib/"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if opIndex(dev.ops, "put /lib/main.py") < 0 {
		t.Errorf("trailing-slash target mishandled: %v", dev.ops)
	}
}

func TestPutDefaultsToLocalBaseName(t *testing.T) {
	local := t.TempDir()
	writeLocalTree(t, local, map[string]string{"boot.py": "x"})

	dev := newFakeDevice()
	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"put", filepath.Join(local, "boot.py")}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if opIndex(dev.ops, "put /boot.py") < 0 {
		t.Errorf("default remote name wrong: %v", dev.ops)
	}
}
