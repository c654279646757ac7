package machinescmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
)

type DeleteCommand struct {
	*base.Command

	clientFlags base.ClientFlags

	flagStop bool
}

func (c *DeleteCommand) Synopsis() string {
	return "Destroy a machine"
}

func (c *DeleteCommand) Help() string {
	return `Usage: sdc machine delete <machine-id>

  Destroys a machine. The server only deletes stopped machines; pass
  -stop to stop it first and wait for the stop to finish.` + c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("machine delete", flag.ExitOnError))
	c.clientFlags.Register(f)

	f.BoolVar(&c.flagStop, "stop", false, "Stop the machine before deleting it")
	return f
}

func (c *DeleteCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(f.Args()) != 1 {
		c.UI.Error("exactly one machine id is required")
		return 1
	}

	client, err := c.clientFlags.Client(c.Command)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx := context.Background()
	id := cloudapi.ID(f.Args()[0])

	if c.flagStop {
		m, err := client.GetMachine(ctx, id)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error fetching machine: %v", err))
			return 1
		}
		if m.State != "stopped" {
			if err := m.Stop(ctx); err != nil {
				c.UI.Error(fmt.Sprintf("error stopping machine: %v", err))
				return 1
			}
			if err := m.WaitForState(ctx, "stopped", 3*time.Second); err != nil {
				c.UI.Error(fmt.Sprintf("error waiting for stop: %v", err))
				return 1
			}
		}
	}

	if err := client.DeleteMachine(ctx, id); err != nil {
		c.UI.Error(fmt.Sprintf("error deleting machine: %v", err))
		return 1
	}
	c.UI.Output("deleted")
	return 0
}
