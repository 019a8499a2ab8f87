package main

import (
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/stephane-martin/mpsh/shell"
)

// The one-shot commands reuse the interactive dispatch, with a prompter
// that never answers: anything needing a confirmation must be forced
// explicitly.

type silentPrompter struct{}

func (silentPrompter) Prompt(string) (string, error) { return "", io.EOF }
func (silentPrompter) AppendHistory(string)          {}

func withState(c *cli.Context, fn func(*shell.State) error) (e error) {
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
	port := c.GlobalString("port")
	dial := makeDialer(c, logger)
	dev, err := dial(port)
	if err != nil {
		return err
	}
	state, err := shell.NewState(dev, port, dial, silentPrompter{}, os.Stdout, c.GlobalBool("color"), logger)
	if err != nil {
		_ = dev.Close()
		return err
	}
	defer state.Close()
	return fn(state)
}

func lsCommand() cli.Command {
	return cli.Command{
		Name:      "ls",
		Usage:     "list a directory on the board",
		ArgsUsage: "[directory]",
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				tokens := []string{"ls"}
				tokens = append(tokens, c.Args()...)
				return s.Dispatch(tokens)
			})
		},
	}
}

func getCommand() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "download a file from the board, or print it",
		ArgsUsage: "remote [local]",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "force,f",
				Usage: "overwrite an existing local file",
			},
		},
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				verb := "get"
				if c.Bool("force") {
					verb = "get!"
				}
				return s.Dispatch(append([]string{verb}, c.Args()...))
			})
		},
	}
}

func putCommand() cli.Command {
	return cli.Command{
		Name:      "put",
		Usage:     "upload a file or directory tree to the board",
		ArgsUsage: "local [remote]",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "force,f",
				Usage: "overwrite existing remote files",
			},
		},
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				verb := "put"
				if c.Bool("force") {
					verb = "put!"
				}
				return s.Dispatch(append([]string{verb}, c.Args()...))
			})
		},
	}
}

func mkdirCommand() cli.Command {
	return cli.Command{
		Name:      "mkdir",
		Usage:     "create directories on the board, parents included",
		ArgsUsage: "directory...",
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				return s.Dispatch(append([]string{"mkdir"}, c.Args()...))
			})
		},
	}
}

func rmCommand() cli.Command {
	return cli.Command{
		Name:      "rm",
		Usage:     "delete files on the board (no confirmation)",
		ArgsUsage: "file...",
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				return s.Dispatch(append([]string{"rm!"}, c.Args()...))
			})
		},
	}
}

func rmdirCommand() cli.Command {
	return cli.Command{
		Name:      "rmdir",
		Usage:     "delete directories and their contents on the board (no confirmation)",
		ArgsUsage: "directory...",
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				return s.Dispatch(append([]string{"rmdir!"}, c.Args()...))
			})
		},
	}
}
