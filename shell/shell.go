package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-shellwords"
	"github.com/scylladb/go-set/strset"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh/terminal"
)

type command func([]string, *strset.Set) error

// offlineVerbs are usable while no board link is active, so a failed
// reconnect after repl leaves a session that can still switch ports.
var offlineVerbs = strset.New("pwd", "cdl", "lsl", "lsla", "port", "exit", "q")

// Prompter abstracts the interactive line reader so the engine can be
// driven by scripted input in tests. Prompt returns ErrInterrupted on
// ctrl-C and io.EOF at end of input.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
}

// State is the session: the current local and remote working directories,
// the active device link, the command history and the queued replay.
type State struct {
	LocalWD  string
	RemoteWD string

	port    string
	dev     Device
	dial    Dialer
	prompt  Prompter
	history History
	queued  []string
	methods map[string]command
	out     io.Writer
	colors  aurora.Aurora
	logger  *zap.SugaredLogger
}

func NewState(dev Device, port string, dial Dialer, prompt Prompter, out io.Writer, colored bool, logger *zap.SugaredLogger) (*State, error) {
	localwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	s := &State{
		LocalWD:  localwd,
		RemoteWD: "/",
		port:     port,
		dev:      dev,
		dial:     dial,
		prompt:   prompt,
		out:      out,
		colors:   aurora.NewAurora(colored),
		logger:   logger,
	}
	s.methods = map[string]command{
		"get":    func(a []string, f *strset.Set) error { return s.get(a, f, false) },
		"get!":   func(a []string, f *strset.Set) error { return s.get(a, f, true) },
		"put":    func(a []string, f *strset.Set) error { return s.put(a, f, false) },
		"put!":   func(a []string, f *strset.Set) error { return s.put(a, f, true) },
		"mkdir":  s.mkdir,
		"ls":     s.ls,
		"cd":     s.cd,
		"pwd":    s.pwd,
		"cdl":    s.cdl,
		"lsl":    func(a []string, f *strset.Set) error { return s.lsl(a, false) },
		"lsla":   func(a []string, f *strset.Set) error { return s.lsl(a, true) },
		"run":    s.runRemote,
		"runl":   s.runLocal,
		"rm":     func(a []string, f *strset.Set) error { return s.remove(a, false, false) },
		"rm!":    func(a []string, f *strset.Set) error { return s.remove(a, true, false) },
		"rmdir":  func(a []string, f *strset.Set) error { return s.remove(a, false, true) },
		"rmdir!": func(a []string, f *strset.Set) error { return s.remove(a, true, true) },
		"rs":     s.reset,
		"reset":  s.reset,
		"rst":    s.reset,
		"port":   s.portCmd,
		"repl":   s.repl,
		"exit":   s.exit,
		"q":      s.exit,
	}
	return s, nil
}

// Verbs returns the known command verbs, for prompt completion.
func (s *State) Verbs() []string {
	verbs := make([]string, 0, len(s.methods))
	for v := range s.methods {
		verbs = append(verbs, v)
	}
	return verbs
}

func (s *State) Port() string { return s.port }

func (s *State) exit(_ []string, _ *strset.Set) error {
	return io.EOF
}

// Close releases the device link. Errors are logged as warnings only.
func (s *State) Close() {
	if s.dev == nil {
		return
	}
	if err := s.dev.Close(); err != nil {
		s.logger.Warnw("closing board connection", "error", err)
	}
	s.dev = nil
}

func (s *State) promptString() string {
	wd := s.RemoteWD
	if !strings.HasSuffix(wd, "/") {
		wd += "/"
	}
	return fmt.Sprintf("mpsh %s%s >>> ", s.port, wd)
}

// Loop runs the read-dispatch cycle until end of input. A ctrl-C at the
// prompt discards the pending line; command errors are reported and the
// loop continues.
func (s *State) Loop() error {
	for {
		blockHistory := false
		var tokens []string
		if s.queued != nil {
			tokens = s.queued
			s.queued = nil
			blockHistory = true
		} else {
			line, err := s.prompt.Prompt(s.promptString())
			if errors.Is(err, ErrInterrupted) {
				fmt.Fprintln(s.out)
				continue
			}
			if err != nil {
				fmt.Fprintln(s.out, "\nterminating session")
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			tokens, err = shellwords.Parse(line)
			if err != nil {
				s.errf("reading command line: %s", err)
				continue
			}
			if len(tokens) == 0 {
				continue
			}
			s.prompt.AppendHistory(line)
		}

		if strings.HasPrefix(tokens[0], "!") {
			s.bang(tokens[0], tokens[1:])
			continue
		}

		err := s.Dispatch(tokens)
		if err == io.EOF {
			fmt.Fprintln(s.out, "terminating session")
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				s.errf("\ncancelling operation")
			} else {
				s.errf("%s", err)
			}
		}
		if !blockHistory {
			s.history.Append(tokens)
		}
	}
}

// Dispatch executes one already-tokenized command line. History tokens
// (!...) are not handled here; they only make sense inside Loop.
func (s *State) Dispatch(tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	verb := strings.ToLower(tokens[0])
	var posargs []string
	flags := strset.New()
	for _, arg := range tokens[1:] {
		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags.Add(strings.TrimLeft(arg, "-"))
		} else {
			posargs = append(posargs, arg)
		}
	}
	fun := s.methods[verb]
	if fun == nil {
		return fmt.Errorf("unknown command: %s", verb)
	}
	if s.dev == nil && !offlineVerbs.Has(verb) {
		return fmt.Errorf("not connected, use port %s to reconnect", s.port)
	}
	return fun(posargs, flags)
}

// bang implements the history tokens: bare ! shows recent entries, !!
// replays the last command, !<n> replays the n-th most recent one and
// !<prefix> replays the most recent command starting with prefix. Replays
// are queued for the next loop turn and never re-appended to history.
func (s *State) bang(verb string, params []string) {
	if verb == "!" && len(params) == 0 {
		s.history.Show(s.out)
		return
	}
	arg := verb[1:]
	if len(params) > 0 {
		arg += " " + strings.Join(params, " ")
	}
	switch {
	case isDigits(arg):
		n, _ := strconv.Atoi(arg)
		tokens, err := s.history.At(n)
		if err != nil {
			if s.history.Len() == 0 {
				s.errf("history log is empty")
			} else {
				s.errf("%s", err)
			}
			return
		}
		s.queued = tokens
	case arg == "!":
		tokens, ok := s.history.Last()
		if !ok {
			s.errf("history log is empty")
			return
		}
		s.queued = tokens
	default:
		if tokens, ok := s.history.FindPrefix(arg); ok {
			s.queued = tokens
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *State) info(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *State) errf(format string, args ...interface{}) {
	fmt.Fprintln(s.out, s.colors.Red(fmt.Sprintf(format, args...)))
}

func (s *State) width() int {
	width, _, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return width
}

func joinLocal(dname, fname string) string {
	if filepath.IsAbs(fname) {
		return fname
	}
	return filepath.Join(dname, fname)
}
