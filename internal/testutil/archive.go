package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"golang.org/x/tools/txtar"
)

// MapFS builds an in-memory fixture store from a txtar archive:
//
//	-- test/add.fur --
//	print(1 + 2)
//	-- test/add.stdout.txt --
//	3
func MapFS(t *testing.T, archive string) fstest.MapFS {
	t.Helper()

	fsys := fstest.MapFS{}
	for _, f := range txtar.Parse([]byte(archive)).Files {
		fsys[f.Name] = &fstest.MapFile{Data: f.Data, Mode: 0644}
	}
	return fsys
}

// WriteTree writes the files of a txtar archive below dir and returns dir.
func WriteTree(t *testing.T, dir, archive string) string {
	t.Helper()

	for _, f := range txtar.Parse([]byte(archive)).Files {
		p := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, f.Data, 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return dir
}

// WriteScript writes an executable shell script below dir.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write script %s: %v", p, err)
	}
	return p
}
