package completion_helper

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
)

// DefaultFlagComplete lists the visible subcommands and the flags not yet
// given on the command line, one per line.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	w := cmd.Root().Writer
	for _, sub := range cmd.Commands {
		if !sub.Hidden {
			_, _ = fmt.Fprintln(w, sub.Name)
		}
	}
	for _, f := range cmd.Flags {
		if v, ok := f.(cli.VisibleFlag); ok && !v.IsVisible() {
			continue
		}
		if f.IsSet() {
			continue
		}
		writeFlagNames(w, f.Names())
	}
}

func writeFlagNames(w io.Writer, names []string) {
	for _, name := range names {
		dashes := "--"
		if len(name) == 1 {
			dashes = "-"
		}
		_, _ = fmt.Fprintln(w, dashes+name)
	}
}
