// Package machinescmd implements the machine-facing CLI commands:
// listing, provisioning, state waiting, and destruction.
package machinescmd

import (
	"github.com/mitchellh/cli"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Operate on individual machines"
}

func (c *Command) Help() string {
	return `Usage: sdc machine <subcommand> [options] [args]

  This command groups subcommands for provisioning and managing
  machines. Use "sdc machines" to list them.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
