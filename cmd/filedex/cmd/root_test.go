package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_RequiresDataDir(t *testing.T) {
	// No --dir and no config: the shell must refuse to start
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestRoot_RejectsPositionalArgs(t *testing.T) {
	_, err := execute(t, "frobnicate")
	require.Error(t, err)
}

func TestVersionCmd_Short(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev", strings.TrimSpace(out))
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "dev"`)
	assert.Contains(t, out, `"go_version"`)
}

func TestVersionCmd_Default(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "filedex dev")
}
