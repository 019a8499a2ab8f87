package main

import (
	"github.com/urfave/cli"

	"github.com/stephane-martin/mpsh/shell"
)

func runCommand() cli.Command {
	return cli.Command{
		Name:      "run",
		Usage:     "send a local script to the board and execute it",
		ArgsUsage: "script.py",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "no-output,n",
				Usage: "start the script without waiting for it to finish",
			},
		},
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				tokens := []string{"runl"}
				if c.Bool("no-output") {
					tokens = append(tokens, "-q")
				}
				return s.Dispatch(append(tokens, c.Args()...))
			})
		},
	}
}

func resetCommand() cli.Command {
	return cli.Command{
		Name:      "reset",
		Usage:     "reboot the board",
		ArgsUsage: "[soft|normal|safe|bootloader]",
		Action: func(c *cli.Context) error {
			return withState(c, func(s *shell.State) error {
				return s.Dispatch(append([]string{"rs"}, c.Args()...))
			})
		},
	}
}
