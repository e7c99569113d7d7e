package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/awantoch/cvdfunctions/utils"
)

// WriteModels creates fake weight files named names under dir and returns
// their contents keyed by name.
func WriteModels(t *testing.T, dir string, names ...string) map[string][]byte {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	contents := make(map[string][]byte, len(names))
	for _, name := range names {
		data := []byte("weights:" + name)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		contents[name] = data
	}
	return contents
}

// ListDir returns the names of the regular files in dir.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names
}

// CaptureUserOutput redirects utils.User to a buffer for the rest of the test.
func CaptureUserOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	utils.SetUserOutput(&buf)
	t.Cleanup(func() { utils.SetUserOutput(os.Stdout) })
	return &buf
}

// CaptureInternalOutput redirects the internal logger to a buffer for the rest of the test.
func CaptureInternalOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	utils.SetInternalOutput(&buf)
	t.Cleanup(func() { utils.SetInternalOutput(os.Stderr) })
	return &buf
}
