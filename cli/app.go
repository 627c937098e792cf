// Package cli contains the frcbot command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/frcbot/logging"
)

const (
	flagDebug   = "debug"
	flagPrint   = "print"
	flagTable   = "table"
	flagConfig  = "config"
	flagCycles  = "cycles"
	flagEvery   = "every"
	flagForward = "forward"
	flagTurn    = "turn"
	flagRight   = "right"
	flagMode    = "mode"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "frcbot",
		Usage:           "check button maps and drive a simulated robot",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "verify",
				Usage:     "check a button map file for conflicting bindings",
				ArgsUsage: "<button map file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagPrint,
						Usage: "print every binding, one per line",
					},
					&cli.BoolFlag{
						Name:  flagTable,
						Usage: "print every binding as a table",
					},
				},
				Action: VerifyAction,
			},
			{
				Name:  "simulate",
				Usage: "run the robot loop against simulated hardware",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Usage:    "load robot configuration from `FILE`",
						Required: true,
					},
					&cli.IntFlag{
						Name:  flagCycles,
						Usage: "number of cycles to run",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  flagEvery,
						Usage: "print a row every `N` cycles",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  flagForward,
						Usage: "forward stick input in [-1, 1]",
					},
					&cli.Float64Flag{
						Name:  flagTurn,
						Usage: "turn stick input in [-1, 1], positive turns right",
					},
					&cli.Float64Flag{
						Name:  flagRight,
						Usage: "strafe stick input in [-1, 1]",
					},
					&cli.StringFlag{
						Name:  flagMode,
						Usage: "robot mode: disabled, autonomous, teleop or test",
						Value: "teleop",
					},
				},
				Action: SimulateAction,
			},
		},
	}
}

func newLogger(c *cli.Context, name string) logging.Logger {
	if c.Bool(flagDebug) {
		return logging.NewDebugLogger(name)
	}
	logger := logging.NewLogger(name)
	logger.SetLevel(logging.WARN)
	return logger
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
