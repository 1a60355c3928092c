package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_PrintsCaseIDsWithoutRunning(t *testing.T) {
	root := writeTree(t, extendedTree)
	s := conforming()

	out, _, err := execute(t, s, "list", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"output/integration/add",
		"leak/integration/add",
		"output/integration/oops",
		"leak/integration/oops",
		"output/scanner/kw",
	}, strings.Split(strings.TrimSpace(out), "\n"))

	assert.Empty(t, s.fur.Calls())
	assert.Empty(t, s.scanner.Calls())
	assert.Empty(t, s.wrapper.Calls())
}

func TestList_JSON(t *testing.T) {
	root := writeTree(t, extendedTree)

	out, _, err := execute(t, conforming(), "list", "--root", root, "--format", "json", "--filter", "leak/*/*")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []ListedCase `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []ListedCase{
		{Case: "leak/integration/add", Kind: "leak", Suite: "integration", Fixture: "test/integration/add.fur"},
		{Case: "leak/integration/oops", Kind: "leak", Suite: "integration", Fixture: "test/integration/oops.fur"},
	}, resp.Data)
}

func TestList_SetupError(t *testing.T) {
	_, _, err := execute(t, conforming(), "list", "--root", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
