package accountcmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
)

type Command struct {
	*base.Command

	clientFlags base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "Show the authenticated account"
}

func (c *Command) Help() string {
	return `Usage: sdc account

  Fetches the account record for the authenticated login and prints it
  as JSON.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("account", flag.ExitOnError))
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

	account, err := client.Account(context.Background())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error fetching account: %v", err))
		return 1
	}

	out, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(string(out))
	return 0
}
