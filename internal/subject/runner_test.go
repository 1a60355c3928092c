package subject_test

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kerkeslager/fur-infinity/internal/subject"
	"github.com/kerkeslager/fur-infinity/internal/testutil"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script subjects need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_CapturesStreamsIndependently(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	script := testutil.WriteScript(t, dir, "fur", `
printf 'out-1\n'
printf 'err-1\n' >&2
printf 'out-2\n'
printf 'err-2\n' >&2
`)

	res, err := subject.NewCommand(script).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "out-1\nout-2\n", string(res.Stdout))
	assert.Equal(t, "err-1\nerr-2\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
}

func TestCommand_NonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "fur", "printf 'boom' >&2\nexit 3\n")

	res, err := subject.NewCommand(script).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, []byte("boom"), res.Stderr)
	assert.Empty(t, res.Stdout)
}

func TestCommand_RawBytesAreNotDecoded(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "fur", `printf '\377\r\nx  \n\n'`)

	res, err := subject.NewCommand(script).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("\xff\r\nx  \n\n"), res.Stdout)
}

func TestCommand_PassesArgumentVerbatim(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "scanner_test", `printf '%s' "$1"`)

	source := "let x = 1\n  \"quoted\" $HOME\n"
	res, err := subject.NewCommand(script).Run(context.Background(), []string{source})
	require.NoError(t, err)
	assert.Equal(t, source, string(res.Stdout))
}

func TestCommand_RelativePathResolvesAgainstDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "fur", `pwd`)

	res, err := subject.NewCommand("./fur", subject.WithDir(dir)).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stdout)
}

func TestCommand_DiscardOutput(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "fur", "echo noisy\necho noisy >&2\nexit 5\n")

	res, err := subject.NewCommand(script, subject.WithDiscardedOutput()).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Equal(t, 5, res.ExitCode)
}

func TestCommand_MissingExecutable(t *testing.T) {
	res, err := subject.NewCommand("/nonexistent/fur").Run(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, res)

	var procErr *subject.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "failed to start", procErr.Reason)
	assert.False(t, procErr.Signaled)
}

func TestCommand_KilledBySignal(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "fur", "printf partial\nkill -9 $$\n")

	res, err := subject.NewCommand(script).Run(context.Background(), nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, -1, res.ExitCode)

	var procErr *subject.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.True(t, procErr.Signaled)
}

func TestCommand_Timeout(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "fur", "exec sleep 5\n")

	start := time.Now()
	_, err := subject.NewCommand(script, subject.WithTimeout(100*time.Millisecond)).Run(context.Background(), nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var procErr *subject.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.True(t, procErr.TimedOut)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCommand_Deterministic(t *testing.T) {
	requireShell(t)
	script := testutil.WriteScript(t, t.TempDir(), "fur", "printf 'a\\nb\\n'\nprintf 'c' >&2\n")
	cmd := subject.NewCommand(script)

	first, err := cmd.Run(context.Background(), nil)
	require.NoError(t, err)
	second, err := cmd.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCommand_NoGoroutineLeaks(t *testing.T) {
	requireShell(t)
	defer goleak.VerifyNone(t)

	script := testutil.WriteScript(t, t.TempDir(), "fur", "echo out\necho err >&2\n")
	cmd := subject.NewCommand(script)
	for i := 0; i < 5; i++ {
		_, err := cmd.Run(context.Background(), nil)
		require.NoError(t, err)
	}
}

func TestRunnerFunc(t *testing.T) {
	var got []string
	r := subject.RunnerFunc(func(_ context.Context, args []string) (*subject.ProcessResult, error) {
		got = args
		return &subject.ProcessResult{Stdout: []byte("ok")}, nil
	})

	res, err := r.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []byte("ok"), res.Stdout)
}
