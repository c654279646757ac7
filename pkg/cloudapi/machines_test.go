package cloudapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMachineID = "b6979942-7d5d-4fe6-a2ec-b812e950625a"

func machineRecord(id string, n int, state string) map[string]interface{} {
	return map[string]interface{}{
		"id":      id,
		"name":    fmt.Sprintf("worker-%d", n),
		"type":    "smartmachine",
		"state":   state,
		"memory":  1024,
		"disk":    16384,
		"ips":     []string{"10.0.0.1"},
		"created": "2026-02-11T05:30:56.000Z",
		"updated": "2026-02-11T05:31:56.000Z",
	}
}

func TestListMachines_NoFiltersSendsNoQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("X-Resource-Count", "1")
		w.Header().Set("X-Query-Limit", "1000")
		writeJSON(t, w, http.StatusOK, []map[string]interface{}{
			machineRecord(testMachineID, 0, "running"),
		})
	}))

	machines, err := c.ListMachines(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, machines, 1)
	assert.Empty(t, gotQuery, "omitted options must not become query parameters")
	assert.Equal(t, "worker-0", machines[0].Name)
	assert.Equal(t, 1024, machines[0].Memory)
	assert.False(t, machines[0].Created.IsZero())
}

func TestListMachines_FiltersAndTags(t *testing.T) {
	var got map[string][]string
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("X-Resource-Count", "0")
		w.Header().Set("X-Query-Limit", "1000")
		writeJSON(t, w, http.StatusOK, []map[string]interface{}{})
	}))

	_, err := c.ListMachines(context.Background(), &MachineListOptions{
		State:  "running",
		Memory: 2048,
		Tags:   map[string]string{"role": "db"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"running"}, got["state"])
	assert.Equal(t, []string{"2048"}, got["memory"])
	assert.Equal(t, []string{"db"}, got["tag.role"])
	assert.NotContains(t, got, "type")
	assert.NotContains(t, got, "limit")
}

func TestListMachines_CollectsAllPages(t *testing.T) {
	const total = 2500
	const pageSize = 1000

	var offsets []int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := 0
		if v := r.URL.Query().Get("offset"); v != "" {
			var err error
			offset, err = strconv.Atoi(v)
			require.NoError(t, err)
		}
		offsets = append(offsets, offset)

		n := total - offset
		if n > pageSize {
			n = pageSize
		}
		page := make([]map[string]interface{}, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("b6979942-7d5d-4fe6-a2ec-b812e95%05d", offset+i)
			page = append(page, machineRecord(id, offset+i, "running"))
		}

		w.Header().Set("X-Resource-Count", strconv.Itoa(total))
		w.Header().Set("X-Query-Limit", strconv.Itoa(pageSize))
		writeJSON(t, w, http.StatusOK, page)
	})

	c := newTestClient(t, nil, handler)
	machines, err := c.ListMachines(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1000, 2000}, offsets)
	require.Len(t, machines, total)
	// Server order is preserved across page boundaries.
	assert.Equal(t, "worker-0", machines[0].Name)
	assert.Equal(t, "worker-999", machines[999].Name)
	assert.Equal(t, "worker-1000", machines[1000].Name)
	assert.Equal(t, "worker-2499", machines[2499].Name)
}

func TestListMachines_PagedReturnsOnePage(t *testing.T) {
	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("X-Resource-Count", "2500")
		w.Header().Set("X-Query-Limit", "1000")
		page := make([]map[string]interface{}, 0, 1000)
		for i := 0; i < 1000; i++ {
			id := fmt.Sprintf("b6979942-7d5d-4fe6-a2ec-b812e95%05d", i)
			page = append(page, machineRecord(id, i, "running"))
		}
		writeJSON(t, w, http.StatusOK, page)
	})

	c := newTestClient(t, nil, handler)
	machines, err := c.ListMachines(context.Background(), &MachineListOptions{Paged: true})
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Len(t, machines, 1000)
}

func TestCountMachines(t *testing.T) {
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("X-Resource-Count", "42")
		w.WriteHeader(http.StatusOK)
	}))

	n, err := c.CountMachines(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestGetMachine_RejectsNonUUID(t *testing.T) {
	c, err := NewClient(&Config{Location: "us-west-1"})
	require.NoError(t, err)

	_, err = c.GetMachine(context.Background(), ID("not-a-uuid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UUID")
}

func TestCreateMachine(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acct/machines", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, http.StatusCreated, machineRecord(testMachineID, 1, "provisioning"))
	}))

	m, err := c.CreateMachine(context.Background(), &CreateMachineOptions{
		Name:    "worker-1",
		Package: ID("Small 1GB"),
		Image:   FromRecord(map[string]interface{}{"id": "fd2cc906-8938-11e3-beab-4359c665ac99"}),
		Metadata: map[string]interface{}{
			"group": "batch",
		},
		Tags: map[string]string{"role": "worker"},
	})
	require.NoError(t, err)

	assert.Equal(t, "worker-1", gotBody["name"])
	assert.Equal(t, "Small 1GB", gotBody["package"])
	assert.Equal(t, "fd2cc906-8938-11e3-beab-4359c665ac99", gotBody["image"])
	assert.Equal(t, "batch", gotBody["metadata.group"])
	assert.Equal(t, "worker", gotBody["tag.role"])
	assert.NotContains(t, gotBody, "dataset")
	assert.NotContains(t, gotBody, "networks")

	assert.Equal(t, testMachineID, m.ID)
	assert.Equal(t, "provisioning", m.State)
}

func TestCreateMachine_BootScript(t *testing.T) {
	scriptPath := filepath.Join(t.TempDir(), "boot.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho hi\n"), 0o600))

	var gotBody map[string]interface{}
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, http.StatusCreated, machineRecord(testMachineID, 1, "provisioning"))
	}))

	_, err := c.CreateMachine(context.Background(), &CreateMachineOptions{
		BootScriptPath: scriptPath,
	})
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", gotBody["metadata.user-script"])
}

func TestCreateMachine_IllegalName(t *testing.T) {
	c, err := NewClient(&Config{Location: "us-west-1"})
	require.NoError(t, err)

	_, err = c.CreateMachine(context.Background(), &CreateMachineOptions{Name: "-bad-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal machine name")
}

func TestCreateMachine_ServerErrorSurfacesAsAPIError(t *testing.T) {
	c := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]string{
			"code":    "InvalidArgument",
			"message": "image not found",
		})
	}))

	_, err := c.CreateMachine(context.Background(), &CreateMachineOptions{Name: "worker-1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "image not found", apiErr.Message)
}
