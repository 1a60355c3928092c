// Package fixture discovers conformance fixtures and resolves their
// expected-output files.
//
// # Fixture Store Layout
//
// A fixture is a source file in a fixture directory. Its expected output
// lives next to it, keyed by the fixture's derived name:
//
//	test/integration/add.fur          integration program
//	test/integration/add.stdout.txt   expected stdout
//	test/integration/add.stderr.txt   expected stderr (absent: must be empty)
//
//	test/scanner/kw.source.txt        scanner source text
//	test/scanner/kw.stdout.txt        expected token listing
//
// An absent expectation file means the stream must produce no bytes at
// all; it never means "skip this stream".
//
// All paths are slash-separated and relative to the root of an fs.FS,
// which is the harness root (the directory the subjects run in).
package fixture
