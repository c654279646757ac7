package packagescmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
)

type Command struct {
	*base.Command

	clientFlags base.ClientFlags

	flagName   string
	flagMemory int
}

func (c *Command) Synopsis() string {
	return "List provisioning packages"
}

func (c *Command) Help() string {
	return `Usage: sdc packages

  Lists the resource packages machines can be provisioned or resized
  with. The default package is marked with an asterisk.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("packages", flag.ExitOnError))
	c.clientFlags.Register(f)

	f.StringVar(&c.flagName, "name", "", "Filter by package name")
	f.IntVar(&c.flagMemory, "memory", 0, "Filter by memory size in MiB")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	client, err := c.clientFlags.Client(c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	packages, err := client.ListPackages(context.Background(), &cloudapi.PackageListOptions{
		Name:   c.flagName,
		Memory: c.flagMemory,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing packages: %v", err))
		return 1
	}

	for _, pkg := range packages {
		marker := " "
		if pkg.Default {
			marker = "*"
		}
		c.UI.Output(fmt.Sprintf("%s %s mem=%d disk=%d swap=%d vcpus=%d",
			marker, pkg.Name, pkg.Memory, pkg.Disk, pkg.Swap, pkg.VCPUs))
	}
	return 0
}
