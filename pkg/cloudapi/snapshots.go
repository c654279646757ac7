package cloudapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Snapshot is the cached local view of a machine snapshot. Like Machine,
// its attributes reflect the last fetch; Refresh resynchronizes them
// through the parent machine's client.
type Snapshot struct {
	Name    string
	State   string
	Created time.Time
	Updated time.Time

	machine *Machine
}

// Machine returns the machine this snapshot belongs to.
func (s *Snapshot) Machine() *Machine {
	return s.machine
}

func newSnapshot(m *Machine, record map[string]interface{}) (*Snapshot, error) {
	s := &Snapshot{machine: m}
	if err := s.save(record); err != nil {
		return nil, err
	}
	return s, nil
}

// save replaces every cached attribute with the record's contents.
func (s *Snapshot) save(record map[string]interface{}) error {
	var fresh Snapshot
	if err := decodeRecord(record, &fresh); err != nil {
		return err
	}
	fresh.machine = s.machine
	if fresh.Name == "" {
		fresh.Name = s.Name
	}
	*s = fresh
	return nil
}

func (s *Snapshot) path() string {
	return s.machine.path() + "/snapshots/" + url.PathEscape(s.Name)
}

// Refresh re-fetches the snapshot's representation and overwrites all
// cached attributes.
func (s *Snapshot) Refresh(ctx context.Context) error {
	var record map[string]interface{}
	if _, err := s.machine.c.Request(ctx, http.MethodGet, s.path(), nil, &record); err != nil {
		return err
	}
	return s.save(record)
}

// CurrentState refreshes the snapshot and returns its state attribute.
func (s *Snapshot) CurrentState(ctx context.Context) (string, error) {
	if err := s.Refresh(ctx); err != nil {
		return "", err
	}
	return s.State, nil
}

// Delete removes the snapshot.
func (s *Snapshot) Delete(ctx context.Context) error {
	_, err := s.machine.c.Request(ctx, http.MethodDelete, s.path(), nil, nil)
	return err
}

// WaitForState polls the snapshot at the given interval until its state
// equals state, bounded by the context.
func (s *Snapshot) WaitForState(ctx context.Context, state string, interval time.Duration) error {
	return waitState(ctx, interval, func(ctx context.Context) (bool, error) {
		current, err := s.CurrentState(ctx)
		if err != nil {
			return false, err
		}
		return current == state, nil
	})
}

// Snapshots lists the machine's snapshots.
func (m *Machine) Snapshots(ctx context.Context) ([]*Snapshot, error) {
	var records []map[string]interface{}
	if _, err := m.c.Request(ctx, http.MethodGet, m.path()+"/snapshots", nil, &records); err != nil {
		return nil, err
	}
	snapshots := make([]*Snapshot, 0, len(records))
	for _, record := range records {
		s, err := newSnapshot(m, record)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// Snapshot fetches one of the machine's snapshots by name.
func (m *Machine) Snapshot(ctx context.Context, name string) (*Snapshot, error) {
	if name == "" {
		return nil, errors.New("cloudapi: snapshot name is required")
	}
	var record map[string]interface{}
	path := m.path() + "/snapshots/" + url.PathEscape(name)
	if _, err := m.c.Request(ctx, http.MethodGet, path, nil, &record); err != nil {
		return nil, err
	}
	return newSnapshot(m, record)
}

// CreateSnapshot asks the server to snapshot the machine's current state.
// Snapshotting is asynchronous: the returned snapshot usually starts in
// the "queued" state, and WaitForState can track it to "created".
func (m *Machine) CreateSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	var record map[string]interface{}
	if _, err := m.c.Request(ctx, http.MethodPost, m.path()+"/snapshots", &RequestOptions{Body: body}, &record); err != nil {
		return nil, err
	}
	return newSnapshot(m, record)
}

// StartFromSnapshot boots the stopped machine from the named snapshot.
func (m *Machine) StartFromSnapshot(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("cloudapi: snapshot name is required")
	}
	path := m.path() + "/snapshots/" + url.PathEscape(name)
	_, err := m.c.Request(ctx, http.MethodPost, path, nil, nil)
	return err
}
