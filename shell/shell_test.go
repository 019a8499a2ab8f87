package shell_test

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/stephane-martin/mpsh/shell"
)

// fakeDevice records every operation and serves canned listings and file
// contents. Tests set listings per directory as they need them.
type fakeDevice struct {
	listings map[string][]shell.Entry
	files    map[string][]byte
	ops      []string
	removeErr map[string]error
	closed    bool
	closeErr  error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		listings:  map[string][]shell.Entry{"/": nil},
		files:     make(map[string][]byte),
		removeErr: make(map[string]error),
	}
}

func (d *fakeDevice) List(dir string) ([]shell.Entry, error) {
	entries, ok := d.listings[dir]
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, shell.ErrNotFound)
	}
	return entries, nil
}

func (d *fakeDevice) Mkdir(p string, existsOkay bool) error {
	d.ops = append(d.ops, "mkdir "+p)
	if _, ok := d.listings[p]; ok {
		if existsOkay {
			return nil
		}
		return fmt.Errorf("%s: %w", p, shell.ErrExists)
	}
	parent := path.Dir(p)
	d.listings[parent] = append(d.listings[parent], shell.Entry{Name: path.Base(p), Dir: true})
	d.listings[p] = nil
	return nil
}

func (d *fakeDevice) ReadFile(p string) ([]byte, error) {
	data, ok := d.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, shell.ErrNotFound)
	}
	return data, nil
}

func (d *fakeDevice) WriteFile(p string, data []byte, onProgress func(int)) error {
	d.ops = append(d.ops, "put "+p)
	d.files[p] = data
	if onProgress != nil {
		onProgress(len(data))
	}
	return nil
}

func (d *fakeDevice) Remove(p string) error {
	d.ops = append(d.ops, "rm "+p)
	return d.removeErr[p]
}

func (d *fakeDevice) RemoveTree(p string, missingOkay bool) error {
	d.ops = append(d.ops, "rmtree "+p)
	return d.removeErr[p]
}

func (d *fakeDevice) Run(script []byte, wantOutput, wait bool) ([]byte, error) {
	d.ops = append(d.ops, "run")
	if wantOutput {
		return []byte("ran\n"), nil
	}
	return nil, nil
}

func (d *fakeDevice) Reset(mode shell.ResetMode) error {
	d.ops = append(d.ops, "reset "+mode.String())
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return d.closeErr
}

// scriptPrompter feeds predetermined prompt responses; when exhausted it
// signals end of input.
type promptResponse struct {
	line string
	err  error
}

type scriptPrompter struct {
	responses []promptResponse
}

func (p *scriptPrompter) Prompt(string) (string, error) {
	if len(p.responses) == 0 {
		return "", io.EOF
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r.line, r.err
}

func (p *scriptPrompter) AppendHistory(string) {}

func lines(ls ...string) []promptResponse {
	rs := make([]promptResponse, 0, len(ls))
	for _, l := range ls {
		rs = append(rs, promptResponse{line: l})
	}
	return rs
}

func newTestState(t *testing.T, dev shell.Device, prompt shell.Prompter, dial shell.Dialer) (*shell.State, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	s, err := shell.NewState(dev, "/dev/ttyTEST", dial, prompt, out, false, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	return s, out
}

func TestLoopCdThenLs(t *testing.T) {
	dev := newFakeDevice()
	dev.listings["/"] = []shell.Entry{{Name: "lib", Dir: true}}
	dev.listings["/lib"] = []shell.Entry{{Name: "tool.py"}}

	prompt := &scriptPrompter{responses: lines("cd lib", "ls")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if s.RemoteWD != "/lib" {
		t.Errorf("RemoteWD = %q, want /lib", s.RemoteWD)
	}
	if !strings.Contains(out.String(), "- tool.py") {
		t.Errorf("ls output missing tool.py:\n%s", out.String())
	}
}

func TestLoopCdMissingDirectoryKeepsCwd(t *testing.T) {
	dev := newFakeDevice()
	prompt := &scriptPrompter{responses: lines("cd nowhere")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if s.RemoteWD != "/" {
		t.Errorf("RemoteWD = %q, want / after a failed cd", s.RemoteWD)
	}
	if !strings.Contains(out.String(), "no such file") {
		t.Errorf("expected a not-found report, got:\n%s", out.String())
	}
}

func TestLoopUnknownCommandContinues(t *testing.T) {
	dev := newFakeDevice()
	prompt := &scriptPrompter{responses: lines("frobnicate", "pwd")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "unknown command: frobnicate") {
		t.Errorf("missing unknown-command hint:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "/dev/ttyTEST") {
		t.Errorf("pwd after the bad command did not run:\n%s", out.String())
	}
}

func TestLoopInterruptAtPromptContinues(t *testing.T) {
	dev := newFakeDevice()
	prompt := &scriptPrompter{responses: []promptResponse{
		{err: shell.ErrInterrupted},
		{line: "pwd"},
	}}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "/dev/ttyTEST") {
		t.Errorf("pwd after ctrl-C did not run:\n%s", out.String())
	}
}

func TestLoopReplayDoesNotGrowHistory(t *testing.T) {
	dev := newFakeDevice()
	prompt := &scriptPrompter{responses: lines("pwd", "!!", "!!", "!")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	shown := strings.Count(out.String(), "1: pwd")
	if shown != 1 {
		t.Errorf("history display should list pwd once, output:\n%s", out.String())
	}
	if strings.Contains(out.String(), "2: pwd") {
		t.Errorf("replayed commands must not re-enter history:\n%s", out.String())
	}
	// the replays themselves did execute
	if got := strings.Count(out.String(), "/dev/ttyTEST:"); got != 3 {
		t.Errorf("pwd ran %d times, want 3 (one direct, two replays)", got)
	}
}

func TestLoopRecallByIndex(t *testing.T) {
	dev := newFakeDevice()
	dev.files["/a.py"] = []byte("print(1)\n")
	prompt := &scriptPrompter{responses: lines("get a.py /tmp/ignored-nonexistent/x", "pwd", "!2")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	// !2 must replay "get a.py ...", which fails the same way both times
	if got := strings.Count(out.String(), "ignored-nonexistent"); got < 2 {
		t.Errorf("!2 did not replay the get command:\n%s", out.String())
	}
}

func TestLoopRecallOutOfRangeReportsMax(t *testing.T) {
	dev := newFakeDevice()
	prompt := &scriptPrompter{responses: lines("pwd", "!7")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "max is !1") {
		t.Errorf("out-of-range recall should report the valid maximum:\n%s", out.String())
	}
}

func TestLoopRecallByPrefix(t *testing.T) {
	dev := newFakeDevice()
	dev.listings["/lib"] = nil
	prompt := &scriptPrompter{responses: lines("cd lib", "cd /", "!cd l")}
	s, _ := newTestState(t, dev, prompt, nil)
	dev.listings["/"] = []shell.Entry{{Name: "lib", Dir: true}}
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if s.RemoteWD != "/lib" {
		t.Errorf("RemoteWD = %q, want /lib after prefix recall", s.RemoteWD)
	}
}

func TestLoopRecallPrefixMissIsSilent(t *testing.T) {
	dev := newFakeDevice()
	prompt := &scriptPrompter{responses: lines("pwd", "!zzz")}
	s, out := newTestState(t, dev, prompt, nil)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "zzz") {
		t.Errorf("a prefix miss should print nothing:\n%s", out.String())
	}
}

func TestPortSwitchFailureKeepsConnection(t *testing.T) {
	dev := newFakeDevice()
	dev.listings["/"] = []shell.Entry{{Name: "x.py"}}
	dial := func(port string) (shell.Device, error) {
		return nil, fmt.Errorf("no board on %s", port)
	}
	prompt := &scriptPrompter{responses: lines("port /dev/ttyBAD", "ls")}
	s, out := newTestState(t, dev, prompt, dial)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "cannot switch") {
		t.Errorf("missing switch failure report:\n%s", out.String())
	}
	if dev.closed {
		t.Error("the previous connection must survive a failed switch")
	}
	if !strings.Contains(out.String(), "- x.py") {
		t.Errorf("ls on the old connection failed:\n%s", out.String())
	}
	if s.Port() != "/dev/ttyTEST" {
		t.Errorf("port = %q, want the old one", s.Port())
	}
}

func TestPortSwitchSuccessClosesOld(t *testing.T) {
	oldDev := newFakeDevice()
	newDev := newFakeDevice()
	newDev.listings["/"] = []shell.Entry{{Name: "fresh.py"}}
	dial := func(port string) (shell.Device, error) {
		return newDev, nil
	}
	prompt := &scriptPrompter{responses: lines("port /dev/ttyNEW", "ls")}
	s, out := newTestState(t, oldDev, prompt, dial)
	if err := s.Loop(); err != nil {
		t.Fatal(err)
	}
	if !oldDev.closed {
		t.Error("the old connection should be released after a successful switch")
	}
	if s.Port() != "/dev/ttyNEW" {
		t.Errorf("port = %q, want /dev/ttyNEW", s.Port())
	}
	if !strings.Contains(out.String(), "- fresh.py") {
		t.Errorf("ls did not use the new connection:\n%s", out.String())
	}
}

func TestCloseSwallowsReleaseError(t *testing.T) {
	dev := newFakeDevice()
	dev.closeErr = fmt.Errorf("tty vanished")
	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	s.Close()
	if !dev.closed {
		t.Error("Close must still attempt the release")
	}
	s.Close() // idempotent
}

func TestDispatchExit(t *testing.T) {
	dev := newFakeDevice()
	s, _ := newTestState(t, dev, &scriptPrompter{}, nil)
	if err := s.Dispatch([]string{"exit"}); err != io.EOF {
		t.Errorf("exit should signal end of input, got %v", err)
	}
}
