// Package remotefiles implements file operations on a MicroPython board by
// running small device-side scripts through the raw REPL.
package remotefiles

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/stephane-martin/mpsh/board"
	"github.com/stephane-martin/mpsh/shell"
)

// repl is what remotefiles needs from a board connection; *board.Board
// satisfies it and tests substitute a fake.
type repl interface {
	EnterRawREPL() error
	ExitRawREPL() error
	Exec(code []byte) ([]byte, error)
	ExecNoFollow(code []byte) error
	Close() error
}

type Client struct {
	b repl
}

var _ shell.Device = (*Client)(nil)

func New(b *board.Board) *Client {
	return &Client{b: b}
}

func (c *Client) Close() error {
	return c.b.Close()
}

// session enters the raw REPL, runs fn and always tries to drop back to
// the friendly REPL afterwards.
func (c *Client) session(fn func() error) error {
	if err := c.b.EnterRawREPL(); err != nil {
		return err
	}
	defer func() { _ = c.b.ExitRawREPL() }()
	return fn()
}

func (c *Client) List(dir string) ([]shell.Entry, error) {
	var out []byte
	err := c.session(func() (e error) {
		out, e = c.b.Exec([]byte(fmt.Sprintf(listScript, pyString(dir))))
		return e
	})
	if err != nil {
		return nil, classify(err, dir)
	}
	return parseListing(out)
}

func (c *Client) Mkdir(path string, existsOkay bool) error {
	err := c.session(func() error {
		_, e := c.b.Exec([]byte(fmt.Sprintf(mkdirScript, pyString(path))))
		return e
	})
	err = classify(err, path)
	if existsOkay && errors.Is(err, shell.ErrExists) {
		return nil
	}
	return err
}

func (c *Client) ReadFile(path string) ([]byte, error) {
	var out []byte
	err := c.session(func() (e error) {
		out, e = c.b.Exec([]byte(fmt.Sprintf(readScript, pyString(path))))
		return e
	})
	if err != nil {
		return nil, classify(err, path)
	}
	return hex.DecodeString(string(bytes.TrimSpace(out)))
}

func (c *Client) WriteFile(path string, data []byte, onProgress func(written int)) error {
	return c.session(func() error {
		if _, err := c.b.Exec([]byte(fmt.Sprintf("f = open(%s, 'wb')", pyString(path)))); err != nil {
			return classify(err, path)
		}
		written := 0
		for len(data) > 0 {
			n := 256
			if len(data) < n {
				n = len(data)
			}
			if _, err := c.b.Exec([]byte("f.write(" + pyBytes(data[:n]) + ")")); err != nil {
				return classify(err, path)
			}
			written += n
			data = data[n:]
			if onProgress != nil {
				onProgress(written)
			}
		}
		if _, err := c.b.Exec([]byte("f.close()")); err != nil {
			return classify(err, path)
		}
		return nil
	})
}

func (c *Client) Remove(path string) error {
	err := c.session(func() error {
		// rmdir fallback lets rm take empty directories too
		_, e := c.b.Exec([]byte(fmt.Sprintf(removeScript, pyString(path))))
		return e
	})
	return classify(err, path)
}

func (c *Client) RemoveTree(path string, missingOkay bool) error {
	err := c.session(func() error {
		_, e := c.b.Exec([]byte(fmt.Sprintf(removeTreeScript, pyString(path))))
		return e
	})
	err = classify(err, path)
	if missingOkay && errors.Is(err, shell.ErrNotFound) {
		return nil
	}
	return err
}

func (c *Client) Run(script []byte, wantOutput bool, wait bool) ([]byte, error) {
	if !wait {
		if err := c.b.EnterRawREPL(); err != nil {
			return nil, err
		}
		// the script owns the board from here on, stay out of its way
		return nil, c.b.ExecNoFollow(script)
	}
	var out []byte
	err := c.session(func() (e error) {
		out, e = c.b.Exec(script)
		return e
	})
	if err != nil {
		return nil, err
	}
	if !wantOutput {
		return nil, nil
	}
	return out, nil
}

func (c *Client) Reset(mode shell.ResetMode) error {
	if mode == shell.ResetSoft {
		if err := c.b.EnterRawREPL(); err != nil {
			return err
		}
		return c.b.ExitRawREPL()
	}
	name := map[shell.ResetMode]string{
		shell.ResetNormal:     "NORMAL",
		shell.ResetSafe:       "SAFE_MODE",
		shell.ResetBootloader: "BOOTLOADER",
	}[mode]
	if name == "" {
		return fmt.Errorf("unsupported reset mode %s", mode)
	}
	if err := c.b.EnterRawREPL(); err != nil {
		return err
	}
	if _, err := c.b.Exec([]byte(stageResetScript)); err != nil {
		_ = c.b.ExitRawREPL()
		return err
	}
	refusal, err := c.b.Exec([]byte(fmt.Sprintf("print(on_next_reset(%s))", pyString(name))))
	if err != nil {
		_ = c.b.ExitRawREPL()
		return err
	}
	if msg := strings.TrimSpace(string(refusal)); msg != "" {
		_ = c.b.ExitRawREPL()
		return errors.New(msg)
	}
	// the reset drops the serial link, a write error here is expected
	_ = c.b.ExecNoFollow([]byte("reset()"))
	return nil
}

func parseListing(out []byte) ([]shell.Entry, error) {
	out = bytes.TrimSpace(out)
	v, err := fastjson.ParseBytes(out)
	if err != nil {
		return nil, fmt.Errorf("unreadable listing from the device: %s", err)
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("unreadable listing from the device: %s", err)
	}
	entries := make([]shell.Entry, 0, len(items))
	for _, item := range items {
		fields, err := item.Array()
		if err != nil || len(fields) < 2 {
			return nil, fmt.Errorf("unreadable listing entry: %s", item)
		}
		name, err := fields[0].StringBytes()
		if err != nil {
			return nil, fmt.Errorf("unreadable listing entry: %s", item)
		}
		mode := fields[1].GetInt()
		var size int64
		if len(fields) > 2 {
			size = fields[2].GetInt64()
		}
		entries = append(entries, shell.Entry{
			Name: string(name),
			Dir:  mode&0x4000 != 0,
			Size: size,
		})
	}
	return entries, nil
}

// classify maps device tracebacks onto the shell's error taxonomy, keeping
// the original traceback in the chain.
func classify(err error, path string) error {
	if err == nil {
		return nil
	}
	var ee *board.ExecError
	if !errors.As(err, &ee) {
		return err
	}
	tb := string(ee.Traceback)
	switch {
	case strings.Contains(tb, "ENOENT") || strings.Contains(tb, "No such file"):
		return fmt.Errorf("%s: %w", path, shell.ErrNotFound)
	case strings.Contains(tb, "EEXIST"):
		return fmt.Errorf("%s: %w", path, shell.ErrExists)
	case strings.Contains(tb, "ENOTEMPTY") || strings.Contains(tb, "EACCES"):
		return fmt.Errorf("%s: %w", path, shell.ErrNotEmpty)
	}
	return err
}
