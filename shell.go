package main

import (
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/stephane-martin/mpsh/board"
	"github.com/stephane-martin/mpsh/remotefiles"
	"github.com/stephane-martin/mpsh/shell"
)

func shellCommand() cli.Command {
	return cli.Command{
		Name:   "shell",
		Usage:  "interactive file shell on the board",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) (e error) {
	defer func() {
		if e != nil {
			e = cli.NewExitError(e.Error(), 1)
		}
	}()
	logger, err := Logger(c.GlobalString("loglevel"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dial := makeDialer(c, logger)
	port := c.GlobalString("port")
	dev, err := dial(port)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabCircular)

	state, err := shell.NewState(dev, port, dial, linerPrompter{line: line}, os.Stdout, c.GlobalBool("color"), logger)
	if err != nil {
		_ = dev.Close()
		return err
	}
	defer state.Close()

	verbs := state.Verbs()
	line.SetCompleter(func(input string) []string {
		var completions []string
		for _, v := range verbs {
			if strings.HasPrefix(v, strings.ToLower(input)) {
				completions = append(completions, v)
			}
		}
		return completions
	})

	return state.Loop()
}

// linerPrompter adapts liner to the shell's Prompter contract.
type linerPrompter struct {
	line *liner.State
}

func (p linerPrompter) Prompt(prompt string) (string, error) {
	l, err := p.line.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", shell.ErrInterrupted
	}
	return l, err
}

func (p linerPrompter) AppendHistory(line string) {
	p.line.AppendHistory(line)
}

func makeDialer(c *cli.Context, logger *zap.SugaredLogger) shell.Dialer {
	baud := c.GlobalInt("baud")
	delay := time.Duration(c.GlobalFloat64("delay") * float64(time.Second))
	return func(port string) (shell.Device, error) {
		b, err := board.Open(port, baud, delay, logger)
		if err != nil {
			return nil, err
		}
		return remotefiles.New(b), nil
	}
}
