package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "magick-mcp dev")
	assert.Contains(t, out.String(), "Git commit: unknown")
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "processor", "timeout", "temp-dir", "log-level"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestRootCmd_BadConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--log-level", "loud"})
	assert.Error(t, cmd.Execute())
}
