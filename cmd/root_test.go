package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileCmd_DefaultLogLevel_IsInfo(t *testing.T) {
	// GIVEN the compile command with its registered flags
	flag := compileCmd.Flags().Lookup("log")

	// WHEN we check the default value
	// THEN it must be "info" — compile runs are expected to log their outcome
	assert.NotNil(t, flag, "log flag must be registered")
	assert.Equal(t, "info", flag.DefValue)
}

func TestCompileCmd_CapsFlagDefaultsToBuiltInProfile(t *testing.T) {
	// GIVEN the compile command with its registered flags
	flag := compileCmd.Flags().Lookup("caps")

	// WHEN we check the default value
	// THEN an empty default means the built-in DefaultProfile is used
	assert.NotNil(t, flag, "caps flag must be registered")
	assert.Equal(t, "", flag.DefValue)
}

func TestCompileCmd_BytesPerElementDefaultsToOne(t *testing.T) {
	flag := compileCmd.Flags().Lookup("bytes-per-element")
	assert.NotNil(t, flag, "bytes-per-element flag must be registered")
	assert.Equal(t, "1", flag.DefValue)
}

func TestRootCmd_RegistersCompileSubcommand(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "compile" {
			found = true
		}
	}
	assert.True(t, found, "compile subcommand must be registered on the root command")
}
