// Package board drives a MicroPython board's raw REPL over a serial link.
// The raw REPL convention: ctrl-A enters raw mode, ctrl-B leaves it,
// ctrl-C interrupts the running program and ctrl-D either executes the
// pending source (raw mode) or soft-reboots (friendly mode). Executed code
// answers with its output and its traceback, each terminated by ctrl-D.
package board

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	ctrlA = "\x01"
	ctrlB = "\x02"
	ctrlC = "\x03"
	ctrlD = "\x04"

	rawBanner  = "raw REPL; CTRL-B to exit\r\n>"
	softReboot = "soft reboot\r\n"

	promptTimeout = 10 * time.Second
	execTimeout   = 20 * time.Second
	readSlice     = 50 * time.Millisecond
)

// Port is the subset of a serial port the board needs. go.bug.st/serial
// ports satisfy it; tests use an in-memory fake.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// ExecError is a traceback raised by code executed on the board.
type ExecError struct {
	Output    []byte
	Traceback []byte
}

func (e *ExecError) Error() string {
	return strings.TrimSpace(string(e.Traceback))
}

type Board struct {
	port     Port
	rawDelay time.Duration
	logger   *zap.SugaredLogger
	unread   bytes.Buffer
}

// Open connects to the board on the given serial device.
func Open(device string, baud int, rawDelay time.Duration, logger *zap.SugaredLogger) (*Board, error) {
	p, err := serial.Open(PortName(device), &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("cannot open port %s: %s", device, err)
	}
	return New(p, rawDelay, logger), nil
}

// New wraps an already-open port. rawDelay is waited before entering the
// raw REPL, for boards that need settling time after the port opens.
func New(p Port, rawDelay time.Duration, logger *zap.SugaredLogger) *Board {
	return &Board{port: p, rawDelay: rawDelay, logger: logger}
}

// Close is idempotent and best-effort.
func (b *Board) Close() error {
	if b.port == nil {
		return nil
	}
	p := b.port
	b.port = nil
	return p.Close()
}

// EnterRawREPL interrupts whatever runs on the board, switches to raw mode
// and soft-reboots into a clean interpreter state.
func (b *Board) EnterRawREPL() error {
	if b.rawDelay > 0 {
		time.Sleep(b.rawDelay)
	}
	if err := b.write([]byte("\r" + ctrlC + ctrlC)); err != nil {
		return err
	}
	b.drain()
	if err := b.write([]byte("\r" + ctrlA)); err != nil {
		return err
	}
	if _, err := b.readUntil([]byte(rawBanner), promptTimeout); err != nil {
		return fmt.Errorf("could not enter raw repl: %s", err)
	}
	if err := b.write([]byte(ctrlD)); err != nil {
		return err
	}
	if _, err := b.readUntil([]byte(softReboot), promptTimeout); err != nil {
		return fmt.Errorf("could not enter raw repl: %s", err)
	}
	if _, err := b.readUntil([]byte(rawBanner), promptTimeout); err != nil {
		return fmt.Errorf("could not enter raw repl: %s", err)
	}
	return nil
}

func (b *Board) ExitRawREPL() error {
	return b.write([]byte("\r" + ctrlB))
}

// Exec runs source in the raw REPL and returns its output. A traceback on
// the device comes back as an *ExecError.
func (b *Board) Exec(code []byte) ([]byte, error) {
	if err := b.send(code); err != nil {
		return nil, err
	}
	return b.follow(execTimeout)
}

// ExecNoFollow starts source without waiting for it to finish, for code
// that resets the board or never returns.
func (b *Board) ExecNoFollow(code []byte) error {
	return b.send(code)
}

// Eval evaluates a python expression and returns its printed value.
func (b *Board) Eval(expr string) ([]byte, error) {
	out, err := b.Exec([]byte("print(" + expr + ")"))
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(out, "\r\n"), nil
}

func (b *Board) send(code []byte) error {
	// the board's input buffer is small, feed it gently
	for len(code) > 0 {
		n := 256
		if len(code) < n {
			n = len(code)
		}
		if err := b.write(code[:n]); err != nil {
			return err
		}
		code = code[n:]
		time.Sleep(10 * time.Millisecond)
	}
	if err := b.write([]byte(ctrlD)); err != nil {
		return err
	}
	if _, err := b.readUntil([]byte("OK"), promptTimeout); err != nil {
		return fmt.Errorf("board did not acknowledge the code: %s", err)
	}
	return nil
}

func (b *Board) follow(timeout time.Duration) ([]byte, error) {
	out, err := b.readUntil([]byte(ctrlD), timeout)
	if err != nil {
		return nil, err
	}
	out = bytes.TrimSuffix(out, []byte(ctrlD))
	traceback, err := b.readUntil([]byte(ctrlD), timeout)
	if err != nil {
		return nil, err
	}
	traceback = bytes.TrimSuffix(traceback, []byte(ctrlD))
	if len(traceback) > 0 {
		return nil, &ExecError{Output: out, Traceback: traceback}
	}
	return out, nil
}

func (b *Board) write(data []byte) error {
	if b.port == nil {
		return fmt.Errorf("connection is closed")
	}
	for len(data) > 0 {
		n, err := b.port.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// readUntil consumes input up to and including marker. Bytes arriving
// after the marker in the same read stay buffered for the next call.
func (b *Board) readUntil(marker []byte, timeout time.Duration) ([]byte, error) {
	if b.port == nil {
		return nil, fmt.Errorf("connection is closed")
	}
	_ = b.port.SetReadTimeout(readSlice)
	deadline := time.Now().Add(timeout)
	tmp := make([]byte, 256)
	for {
		if i := bytes.Index(b.unread.Bytes(), marker); i >= 0 {
			out := make([]byte, i+len(marker))
			_, _ = b.unread.Read(out)
			return out, nil
		}
		n, err := b.port.Read(tmp)
		if n > 0 {
			b.unread.Write(tmp[:n])
			continue
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for %q (buffered %q)", marker, b.unread.Bytes())
		}
	}
}

// drain discards whatever the board is currently printing.
func (b *Board) drain() {
	if b.port == nil {
		return
	}
	b.unread.Reset()
	_ = b.port.SetReadTimeout(readSlice)
	tmp := make([]byte, 256)
	for {
		n, err := b.port.Read(tmp)
		if n == 0 || err != nil {
			return
		}
	}
}
