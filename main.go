// jrust translates jrust programs to Rust.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: int(log.LvlWarn),
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Usage: "Colorize diagnostics: auto, always or never",
		Value: "auto",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "jrust"
	app.Usage = "translate jrust programs to Rust"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{verbosityFlag, colorFlag}
	app.Commands = []cli.Command{
		checkCommand,
		emitCommand,
		buildCommand,
		tokensCommand,
		initCommand,
	}
	app.Writer = os.Stdout
	app.ErrWriter = colorable.NewColorableStderr()
	app.Before = setup
	return app
}

// setup installs the log handler and decides whether diagnostics are colored.
func setup(ctx *cli.Context) error {
	useColor, err := colorEnabled(ctx.GlobalString(colorFlag.Name), os.Stderr)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	output := io.Writer(os.Stderr)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	lvl := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(output, log.TerminalFormat(useColor))))
	return nil
}

func colorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		return tty && os.Getenv("TERM") != "dumb", nil
	}
	return false, fmt.Errorf("invalid --%s value %q", colorFlag.Name, mode)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
