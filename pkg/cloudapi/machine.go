package cloudapi

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// Machine is the cached local view of a machine instance. Its attributes
// reflect the last fetch and may be stale; Refresh is the only operation
// that resynchronizes them. All network access goes through the owning
// Client.
type Machine struct {
	ID       string
	Name     string
	Type     string
	State    string
	Dataset  string
	Image    string
	Memory   int
	Disk     int
	IPs      []string
	Metadata map[string]interface{}
	Tags     map[string]string
	Created  time.Time
	Updated  time.Time

	c *Client
}

func (m *Machine) identify(resourceKind) (string, error) {
	if m.ID == "" {
		return "", errors.New("cloudapi: machine has no id")
	}
	return m.ID, nil
}

// newMachine builds a Machine from a decoded API record.
func newMachine(c *Client, record map[string]interface{}) (*Machine, error) {
	m := &Machine{c: c}
	if err := m.save(record); err != nil {
		return nil, err
	}
	return m, nil
}

// save replaces every cached attribute with the record's contents. A field
// missing from the record is reset, not preserved.
func (m *Machine) save(record map[string]interface{}) error {
	var fresh Machine
	if err := decodeRecord(record, &fresh); err != nil {
		return err
	}
	fresh.c = m.c
	if fresh.ID == "" {
		fresh.ID = m.ID
	}
	*m = fresh
	return nil
}

func (m *Machine) path() string {
	return "machines/" + url.PathEscape(m.ID)
}

// Refresh re-fetches the machine's representation and overwrites all
// cached attributes.
func (m *Machine) Refresh(ctx context.Context) error {
	record, err := m.c.rawMachine(ctx, m.ID, false)
	if err != nil {
		return err
	}
	return m.save(record)
}

// CurrentState refreshes the machine and returns its state attribute.
func (m *Machine) CurrentState(ctx context.Context) (string, error) {
	if err := m.Refresh(ctx); err != nil {
		return "", err
	}
	return m.State, nil
}

// Start boots a stopped machine.
func (m *Machine) Start(ctx context.Context) error {
	return m.c.machineAction(ctx, m.ID, "start", nil)
}

// Stop shuts the machine down.
func (m *Machine) Stop(ctx context.Context) error {
	return m.c.machineAction(ctx, m.ID, "stop", nil)
}

// Reboot restarts the machine.
func (m *Machine) Reboot(ctx context.Context) error {
	return m.c.machineAction(ctx, m.ID, "reboot", nil)
}

// Resize moves the machine to another package.
func (m *Machine) Resize(ctx context.Context, pkg Identifier) error {
	name, err := resolveIdentifier(pkg, kindPackage)
	if err != nil {
		return err
	}
	return m.c.machineAction(ctx, m.ID, "resize", url.Values{"package": []string{name}})
}

// Rename relabels the machine.
func (m *Machine) Rename(ctx context.Context, name string) error {
	if !machineNamePattern.MatchString(name) {
		return errors.New("cloudapi: illegal machine name " + name)
	}
	return m.c.machineAction(ctx, m.ID, "rename", url.Values{"name": []string{name}})
}

// Delete destroys the machine. It must be stopped first.
func (m *Machine) Delete(ctx context.Context) error {
	return m.c.DeleteMachine(ctx, m)
}

// WaitForState polls the machine at the given interval until its state
// equals state. The context bounds the wait; expiry surfaces as
// ErrWaitAborted with the cached attributes left at the last observation.
func (m *Machine) WaitForState(ctx context.Context, state string, interval time.Duration) error {
	return waitState(ctx, interval, func(ctx context.Context) (bool, error) {
		current, err := m.CurrentState(ctx)
		if err != nil {
			return false, err
		}
		return current == state, nil
	})
}

// WaitWhileState polls the machine at the given interval until its state
// differs from state.
func (m *Machine) WaitWhileState(ctx context.Context, state string, interval time.Duration) error {
	return waitState(ctx, interval, func(ctx context.Context) (bool, error) {
		current, err := m.CurrentState(ctx)
		if err != nil {
			return false, err
		}
		return current != state, nil
	})
}
