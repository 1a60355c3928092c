package fixture

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedPath_SuffixTable(t *testing.T) {
	tests := []struct {
		name    string
		fixture Fixture
		stdout  string
		stderr  string
	}{
		{
			name:    "integration program",
			fixture: Fixture{Category: IntegrationProgram, Path: "test/add.fur", Name: "add"},
			stdout:  "test/add.stdout.txt",
			stderr:  "test/add.stderr.txt",
		},
		{
			name:    "integration program in extended layout",
			fixture: Fixture{Category: IntegrationProgram, Path: "test/integration/loop.fur", Name: "loop"},
			stdout:  "test/integration/loop.stdout.txt",
			stderr:  "test/integration/loop.stderr.txt",
		},
		{
			name:    "scanner source",
			fixture: Fixture{Category: ScannerSource, Path: "test/scanner/kw.source.txt", Name: "kw"},
			stdout:  "test/scanner/kw.stdout.txt",
			stderr:  "test/scanner/kw.stderr.txt",
		},
		{
			name:    "dotted name",
			fixture: Fixture{Category: ScannerSource, Path: "test/scanner/a.b.source.txt", Name: "a.b"},
			stdout:  "test/scanner/a.b.stdout.txt",
			stderr:  "test/scanner/a.b.stderr.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stdout, ExpectedPath(tt.fixture, Stdout))
			assert.Equal(t, tt.stderr, ExpectedPath(tt.fixture, Stderr))
		})
	}
}

func TestLoadExpected_MissingFilesAreEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"test/add.fur":        {Data: []byte("print(1 + 2)")},
		"test/add.stdout.txt": {Data: []byte("3\n")},
	}
	f := Fixture{Category: IntegrationProgram, Path: "test/add.fur", Name: "add"}

	exp, err := LoadExpected(fsys, f)
	require.NoError(t, err)
	assert.Equal(t, []byte("3\n"), exp.Stdout)
	assert.NotNil(t, exp.Stderr)
	assert.Empty(t, exp.Stderr)
	assert.Equal(t, exp.Stdout, exp.For(Stdout))
	assert.Equal(t, exp.Stderr, exp.For(Stderr))
}

func TestLoadExpected_BytesAreExact(t *testing.T) {
	raw := []byte("line\r\n\xff trailing  \n\n")
	fsys := fstest.MapFS{
		"test/raw.stderr.txt": {Data: raw},
	}
	f := Fixture{Category: IntegrationProgram, Path: "test/raw.fur", Name: "raw"}

	exp, err := LoadExpected(fsys, f)
	require.NoError(t, err)
	assert.Equal(t, raw, exp.Stderr)
	assert.Empty(t, exp.Stdout)
}

func TestLoadExpected_UnreadableFileIsError(t *testing.T) {
	// A directory where an expectation file should be cannot be read.
	fsys := fstest.MapFS{
		"test/odd.stdout.txt/child": {Data: []byte("x")},
	}
	f := Fixture{Category: IntegrationProgram, Path: "test/odd.fur", Name: "odd"}

	_, err := LoadExpected(fsys, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read expected stdout")
}

func TestCategory_SuffixAndParse(t *testing.T) {
	assert.Equal(t, ".fur", IntegrationProgram.Suffix())
	assert.Equal(t, ".source.txt", ScannerSource.Suffix())
	assert.Equal(t, "", Category(9).Suffix())

	for _, s := range []string{"program", "integration"} {
		c, err := ParseCategory(s)
		require.NoError(t, err)
		assert.Equal(t, IntegrationProgram, c)
	}

	c, err := ParseCategory("scanner")
	require.NoError(t, err)
	assert.Equal(t, ScannerSource, c)

	_, err = ParseCategory("parser")
	assert.Error(t, err)
}
