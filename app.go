package main

import (
	"github.com/urfave/cli"
)

// App returns the mpsh application object.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "mpsh"
	app.Usage = "manage files on MicroPython boards over a serial link"
	app.Version = Version
	app.Commands = []cli.Command{
		shellCommand(),
		lsCommand(),
		getCommand(),
		putCommand(),
		mkdirCommand(),
		rmCommand(),
		rmdirCommand(),
		runCommand(),
		resetCommand(),
	}
	app.Flags = GlobalFlags()
	app.Action = shellAction
	return app
}

// GlobalFlags returns the global flags for mpsh.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "port,p",
			Usage:  "serial port the board is connected to",
			EnvVar: "AMPY_PORT",
			Value:  "/dev/ttyACM0",
		},
		cli.IntFlag{
			Name:   "baud,b",
			Usage:  "serial baud rate",
			EnvVar: "AMPY_BAUD",
			Value:  115200,
		},
		cli.Float64Flag{
			Name:   "delay,d",
			Usage:  "seconds to wait before entering the raw REPL",
			EnvVar: "AMPY_DELAY",
			Value:  0,
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "logging level",
			Value: "info",
		},
		cli.BoolFlag{
			Name:  "color",
			Usage: "colored output",
		},
	}
}
