package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkeslager/fur-infinity/internal/harness"
	"github.com/kerkeslager/fur-infinity/internal/history"
	"github.com/kerkeslager/fur-infinity/internal/testutil"
)

func TestHistoryMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewHistoryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db is required")
}

func TestHistoryNonExistentDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Database: "/nonexistent/path/furtest.db"}
	cmd := NewHistoryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestHistoryEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "furtest.db")
	st, err := history.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "No runs recorded\n", buf.String())

	cmd = NewHistoryCommand(&RootOptions{Format: "text", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--last"})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no runs recorded")
}

func TestHistoryUnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "furtest.db")
	st, err := history.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "json", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--run", "missing"})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDatabase, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `no run "missing"`)
}

func TestHistoryRunFailuresJSON(t *testing.T) {
	root := writeTree(t, extendedTree)
	dbPath := filepath.Join(t.TempDir(), "furtest.db")

	_, _, err := execute(t, failing(), "--root", root, "--db", dbPath)
	require.Error(t, err)

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "json", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--run", "run-1"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string        `json:"status"`
		Data   FailureReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Data.Run.ID)
	assert.Equal(t, root, resp.Data.Run.Root)

	cases := make([]string, len(resp.Data.Failures))
	for i, f := range resp.Data.Failures {
		cases[i] = f.CaseID
	}
	assert.Equal(t, []string{
		"leak/integration/oops",
		"output/integration/add",
		"output/scanner/kw",
	}, cases)
}

func TestHistoryListsRunsMostRecentFirst(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "furtest.db")
	root := writeTree(t, extendedTree)

	// Both runs start at the same instant; ties fall back to the run ID.
	for _, id := range []string{"run-a", "run-b"} {
		opts := append(conforming().options(), harness.WithIDGenerator(testutil.NewFixedIDGenerator(id)))
		cmd := NewRootCommand(opts...)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--root", root, "--db", dbPath, "--skip-leak-check"})
		require.NoError(t, cmd.Execute())
	}

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--limit", "1"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ run-b  2024-01-01T00:00:00Z  3 passed, 0 failed, 0 errored")
	assert.NotContains(t, buf.String(), "run-a")
}
