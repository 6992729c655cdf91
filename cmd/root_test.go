package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"run", "serve", "tabs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "sheetsync", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	flag := runCmd.Flags().Lookup("files")
	require.NotNil(t, flag, "run command should have --files flag")

	mode := runCmd.Flags().Lookup("mode")
	require.NotNil(t, mode, "run command should have --mode flag")
	assert.Equal(t, "replace", mode.DefValue)

	override := runCmd.Flags().Lookup("company-override")
	require.NotNil(t, override, "run command should have --company-override flag")

	dryRun := runCmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun, "run command should have --dry-run flag")
	assert.Equal(t, "false", dryRun.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
