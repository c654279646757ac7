package cloudapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotTestMachine serves one machine fetch and then hands snapshot
// traffic to the given handler.
func snapshotTestMachine(t *testing.T, snapshots http.HandlerFunc) *Machine {
	t.Helper()
	var serves int
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serves++
		if serves == 1 {
			writeJSON(t, w, http.StatusOK, machineRecord(testMachineID, 1, "running"))
			return
		}
		snapshots(w, r)
	}))

	m, err := c.GetMachine(context.Background(), ID(testMachineID))
	require.NoError(t, err)
	return m
}

func TestMachineSnapshots(t *testing.T) {
	m := snapshotTestMachine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acct/machines/"+testMachineID+"/snapshots", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"name": "pre-upgrade", "state": "created", "created": "2026-03-01T10:00:00Z"},
			{"name": "nightly", "state": "queued"},
		})
	})

	snapshots, err := m.Snapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "pre-upgrade", snapshots[0].Name)
	assert.Equal(t, "created", snapshots[0].State)
	assert.False(t, snapshots[0].Created.IsZero())
	assert.Same(t, m, snapshots[0].Machine())
}

func TestCreateSnapshotAndWait(t *testing.T) {
	states := []string{"queued", "queued", "created"}
	var polls int
	m := snapshotTestMachine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(t, w, http.StatusCreated, map[string]interface{}{
				"name": "pre-upgrade", "state": "queued",
			})
			return
		}
		assert.Equal(t, "/acct/machines/"+testMachineID+"/snapshots/pre-upgrade", r.URL.Path)
		state := states[len(states)-1]
		if polls < len(states) {
			state = states[polls]
		}
		polls++
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"name": "pre-upgrade", "state": state,
		})
	})

	s, err := m.CreateSnapshot(context.Background(), "pre-upgrade")
	require.NoError(t, err)
	assert.Equal(t, "queued", s.State)

	require.NoError(t, s.WaitForState(context.Background(), "created", time.Millisecond))
	assert.Equal(t, "created", s.State)
	assert.Equal(t, 3, polls)
}

func TestSnapshotRefresh_FullReplace(t *testing.T) {
	responses := []map[string]interface{}{
		{"name": "pre-upgrade", "state": "queued", "created": "2026-03-01T10:00:00Z"},
		{"name": "pre-upgrade", "state": "created", "created": "2026-03-01T10:00:00Z",
			"updated": "2026-03-01T10:05:00Z"},
	}
	var serves int
	m := snapshotTestMachine(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, responses[serves])
		serves++
	})

	s, err := m.Snapshot(context.Background(), "pre-upgrade")
	require.NoError(t, err)
	assert.Equal(t, "queued", s.State)
	assert.True(t, s.Updated.IsZero())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "created", s.State)
	assert.False(t, s.Updated.IsZero())
	assert.Same(t, m, s.Machine())
}

func TestSnapshotDelete(t *testing.T) {
	var gotMethod, gotPath string
	m := snapshotTestMachine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(t, w, http.StatusOK, map[string]interface{}{
				"name": "nightly", "state": "created",
			})
			return
		}
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	s, err := m.Snapshot(context.Background(), "nightly")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/acct/machines/"+testMachineID+"/snapshots/nightly", gotPath)
}

func TestStartFromSnapshot(t *testing.T) {
	var gotMethod, gotPath string
	m := snapshotTestMachine(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, m.StartFromSnapshot(context.Background(), "pre-upgrade"))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/acct/machines/"+testMachineID+"/snapshots/pre-upgrade", gotPath)
}
