package datacenterscmd

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
)

type Command struct {
	*base.Command

	clientFlags base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "List known datacenters"
}

func (c *Command) Help() string {
	return `Usage: sdc datacenters

  Lists the datacenters the cloud advertises, one "name url" pair per
  line.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("datacenters", flag.ExitOnError))
	c.clientFlags.Register(f)
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

	datacenters, err := client.Datacenters(context.Background())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing datacenters: %v", err))
		return 1
	}

	names := make([]string, 0, len(datacenters))
	for name := range datacenters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.UI.Output(fmt.Sprintf("%s %s", name, datacenters[name]))
	}
	return 0
}
