// Package base carries the state shared by every CLI command: the UI,
// the logger, and a flag set wrapper that can render its own help text.
package base

import (
	"bytes"
	"flag"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by each subcommand.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger
}

// FlagSet wraps flag.FlagSet so commands can append a rendered flag
// listing to their Help output.
type FlagSet struct {
	*flag.FlagSet
}

func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

func (f *FlagSet) StringVar(p *string, name, value, usage string) {
	f.FlagSet.StringVar(p, name, value, usage)
}

func (f *FlagSet) BoolVar(p *bool, name string, value bool, usage string) {
	f.FlagSet.BoolVar(p, name, value, usage)
}

func (f *FlagSet) IntVar(p *int, name string, value int, usage string) {
	f.FlagSet.IntVar(p, name, value, usage)
}

func (f *FlagSet) DurationVar(p *time.Duration, name string, value time.Duration, usage string) {
	f.FlagSet.DurationVar(p, name, value, usage)
}

// Help renders the registered flags as an indented listing suitable for
// appending to a command's Help string.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("\n\nOptions:\n")
	f.FlagSet.VisitAll(func(fl *flag.Flag) {
		line := fmt.Sprintf("  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			line += fmt.Sprintf(" (default: %s)", fl.DefValue)
		}
		buf.WriteString(line + "\n")
		buf.WriteString("      " + fl.Usage + "\n")
	})
	return buf.String()
}
