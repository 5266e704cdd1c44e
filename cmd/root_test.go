package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCommandsAcceptBareInvocation(t *testing.T) {
	// no target path means "build ."
	assert.NoError(t, rootCmd.Args(rootCmd, nil))
	assert.NoError(t, rootCmd.Args(rootCmd, []string{"path/to/benv"}))
	assert.Error(t, rootCmd.Args(rootCmd, []string{"one", "two"}))

	assert.NoError(t, buildCmd.Args(buildCmd, nil))
	assert.Error(t, buildCmd.Args(buildCmd, []string{"one", "two"}))
}
