package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkeslager/fur-infinity/internal/subject"
)

func TestDeterministicClock_AdvancesByStep(t *testing.T) {
	clock := NewDeterministicClock(10 * time.Millisecond)

	first := clock.Now()
	second := clock.Now()

	assert.Equal(t, Epoch, first)
	assert.Equal(t, 10*time.Millisecond, second.Sub(first))
	assert.Equal(t, int64(2), clock.Readings())

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestFixedIDGenerator(t *testing.T) {
	assert.Equal(t, "run-1", NewFixedIDGenerator("run-1").Generate())
	assert.Equal(t, "test-run-default", NewFixedIDGenerator("").Generate())
}

func TestFakeRunner_RecordsCalls(t *testing.T) {
	fake := NewFakeRunner(ByLastArgument(map[string]*subject.ProcessResult{
		"test/add.fur": Output("3\n", "", 0),
	}))

	res, err := fake.Run(context.Background(), []string{"test/add.fur"})
	require.NoError(t, err)
	assert.Equal(t, []byte("3\n"), res.Stdout)

	res, err = fake.Run(context.Background(), []string{"unknown"})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)

	assert.Equal(t, [][]string{{"test/add.fur"}, {"unknown"}}, fake.Calls())
}

func TestFakeRunner_HonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFakeRunner(nil).Run(ctx, []string{"x"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMapFSAndWriteTree(t *testing.T) {
	archive := `
-- test/add.fur --
print(1 + 2)
-- test/add.stdout.txt --
3
`
	fsys := MapFS(t, archive)
	assert.Equal(t, []byte("3\n"), fsys["test/add.stdout.txt"].Data)

	dir := WriteTree(t, t.TempDir(), archive)
	data, err := os.ReadFile(filepath.Join(dir, "test", "add.fur"))
	require.NoError(t, err)
	assert.Equal(t, "print(1 + 2)\n", string(data))
}
