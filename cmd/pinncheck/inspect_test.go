package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const savedSnapshot = `<html><head><title>Pinn</title></head>
<body><h1>Welcome to Pinn</h1><p>Choose a folder to store your notes.</p></body></html>`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run_dom.html")
	require.NoError(t, os.WriteFile(path, []byte(savedSnapshot), 0o644))
	return path
}

func TestInspect_ReportsTitleAndText(t *testing.T) {
	path := writeSnapshot(t)

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"inspect", path, "--text", "Welcome to Pinn", "--text", "All notes"})

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "page title: Pinn")
	assert.Contains(t, got, "heading: Welcome to Pinn")
	assert.Contains(t, got, `text "Welcome to Pinn" present`)
	assert.Contains(t, got, `text "All notes" absent`)
}

func TestInspect_MissingFile(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"inspect", filepath.Join(t.TempDir(), "absent.html")})

	assert.Error(t, cmd.Execute())
}
