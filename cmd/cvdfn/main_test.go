package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) error {
	t.Helper()
	configPath, debug = "", false
	t.Setenv(constants.EnvConfigPath, filepath.Join(t.TempDir(), "missing.json"))
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCopyModels(t *testing.T) {
	out := testutil.CaptureUserOutput(t)
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "models")
	testutil.WriteModels(t, src, "hypertension.pt", "fusion_cvd_noskewed.pth")

	require.NoError(t, runCmd(t, "copy-models", "--source", src, "--dest", dest))

	got := testutil.ListDir(t, dest)
	sort.Strings(got)
	assert.Equal(t, []string{"fusion_cvd_noskewed.pth", "hypertension.pt"}, got)
	assert.Contains(t, out.String(), "Copied 2/4 model files")
}

func TestCopyModels_NothingToCopySucceeds(t *testing.T) {
	out := testutil.CaptureUserOutput(t)
	dest := filepath.Join(t.TempDir(), "models")

	require.NoError(t, runCmd(t, "copy-models", "--source", filepath.Join(t.TempDir(), "nope"), "--dest", dest))
	assert.Contains(t, out.String(), "No model files were copied")
	assert.DirExists(t, dest)
}

func TestCopyModels_ModelsFlag(t *testing.T) {
	testutil.CaptureUserOutput(t)
	src, dest := t.TempDir(), t.TempDir()
	testutil.WriteModels(t, src, "vessel.pth", "cimt_reg.pth")

	require.NoError(t, runCmd(t, "copy-models", "--source", src, "--dest", dest, "--models", "vessel.pth"))
	assert.Equal(t, []string{"vessel.pth"}, testutil.ListDir(t, dest))
}

func TestCopyModels_BadConfigStillSucceeds(t *testing.T) {
	testutil.CaptureUserOutput(t)
	testutil.CaptureInternalOutput(t)
	bad := filepath.Join(t.TempDir(), "functions.config.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"staging": 42}`), 0o644))
	src, dest := t.TempDir(), t.TempDir()
	testutil.WriteModels(t, src, "vessel.pth")

	require.NoError(t, runCmd(t, "copy-models", "--config", bad, "--source", src, "--dest", dest))
	assert.Equal(t, []string{"vessel.pth"}, testutil.ListDir(t, dest))
}

func TestCopyModels_UnknownFlagIgnored(t *testing.T) {
	testutil.CaptureUserOutput(t)
	assert.NoError(t, runCmd(t, "copy-models", "--strict", "--dest", t.TempDir(), "--source", t.TempDir()))
}

func TestCopyModels_MissingFlagValueSucceeds(t *testing.T) {
	out := testutil.CaptureUserOutput(t)
	logs := testutil.CaptureInternalOutput(t)
	dest := filepath.Join(t.TempDir(), "models")

	require.NoError(t, runCmd(t, "copy-models", "--dest", dest, "--source"))
	assert.DirExists(t, dest)
	assert.Contains(t, out.String(), "Copied 0/4 model files")
	assert.Contains(t, logs.String(), "flag needs an argument")
}

func TestCopyModels_MalformedModelsFlagSucceeds(t *testing.T) {
	out := testutil.CaptureUserOutput(t)
	logs := testutil.CaptureInternalOutput(t)
	src, dest := t.TempDir(), t.TempDir()
	testutil.WriteModels(t, src, "vessel.pth")

	require.NoError(t, runCmd(t, "copy-models", "--source", src, "--dest", dest, "--models", `"a`))
	assert.Equal(t, []string{"vessel.pth"}, testutil.ListDir(t, dest))
	assert.Contains(t, out.String(), "Copied 1/4 model files")
	assert.Contains(t, logs.String(), "--models")
}

func TestCopyModels_FromConfigFile(t *testing.T) {
	testutil.CaptureUserOutput(t)
	src, dest := t.TempDir(), filepath.Join(t.TempDir(), "models")
	testutil.WriteModels(t, src, "cimt_reg.pth")
	cfg := filepath.Join(t.TempDir(), "functions.config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("staging:\n  source: "+src+"\n  dest: "+dest+"\n"), 0o644))

	require.NoError(t, runCmd(t, "copy-models", "--config", cfg))
	assert.Equal(t, []string{"cimt_reg.pth"}, testutil.ListDir(t, dest))
}

func TestServe_InvalidConfigFails(t *testing.T) {
	testutil.CaptureInternalOutput(t)
	bad := filepath.Join(t.TempDir(), "functions.config.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"tracing": {"exporter": "zipkin"}}`), 0o644))

	assert.Error(t, runCmd(t, "serve", "--config", bad, "--addr", "127.0.0.1:0"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	testutil.CaptureInternalOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_AddressInUse(t *testing.T) {
	testutil.CaptureInternalOutput(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	assert.Error(t, serve(context.Background(), l.Addr().String()))
}

func TestLocalFunctions(t *testing.T) {
	fns := localFunctions()
	assert.Contains(t, fns, "predict")
	assert.Contains(t, fns, "test")
}
