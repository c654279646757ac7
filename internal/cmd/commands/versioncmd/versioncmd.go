package versioncmd

import (
	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the sdc version"
}

func (c *Command) Help() string {
	return `Usage: sdc version

  Prints the version of this sdc build.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
