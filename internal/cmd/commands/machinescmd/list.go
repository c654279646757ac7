package machinescmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/smartdc-forge/smartdc/internal/cmd/base"
	"github.com/smartdc-forge/smartdc/pkg/cloudapi"
)

type ListCommand struct {
	*base.Command

	clientFlags base.ClientFlags

	flagType   string
	flagName   string
	flagState  string
	flagMemory int
	flagTags   stringMapFlag
	flagCount  bool
}

// stringMapFlag collects repeated key=value flag values into a map.
type stringMapFlag map[string]string

func (m *stringMapFlag) String() string {
	return fmt.Sprintf("%v", map[string]string(*m))
}

func (m *stringMapFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if *m == nil {
		*m = stringMapFlag{}
	}
	(*m)[k] = v
	return nil
}

func (c *ListCommand) Synopsis() string {
	return "List the account's machines"
}

func (c *ListCommand) Help() string {
	return `Usage: sdc machines

  Lists machines, transparently collecting every result page. Filters
  are applied server-side.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("machines", flag.ExitOnError))
	c.clientFlags.Register(f)

	f.StringVar(&c.flagType, "type", "", "Filter by machine type (virtualmachine, smartmachine)")
	f.StringVar(&c.flagName, "name", "", "Filter by machine name")
	f.StringVar(&c.flagState, "state", "", "Filter by machine state")
	f.IntVar(&c.flagMemory, "memory", 0, "Filter by memory size in MiB")
	f.Var(&c.flagTags, "tag", "Filter by tag, as key=value (repeatable)")
	f.BoolVar(&c.flagCount, "count", false, "Print only the number of matching machines")
	return f
}

func (c *ListCommand) Run(args []string) int {
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

	opts := &cloudapi.MachineListOptions{
		Type:   c.flagType,
		Name:   c.flagName,
		State:  c.flagState,
		Memory: c.flagMemory,
		Tags:   c.flagTags,
	}

	ctx := context.Background()
	if c.flagCount {
		count, err := client.CountMachines(ctx, opts)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error counting machines: %v", err))
			return 1
		}
		c.UI.Output(fmt.Sprintf("%d", count))
		return 0
	}

	machines, err := client.ListMachines(ctx, opts)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing machines: %v", err))
		return 1
	}

	for _, m := range machines {
		c.UI.Output(fmt.Sprintf("%s %s %s %s", m.ID, m.Name, m.State, strings.Join(m.IPs, ",")))
	}
	return 0
}
