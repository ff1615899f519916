// File: cmd/cmd_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panelops/teller/internal/artifacts"
	"github.com/panelops/teller/internal/config"
)

func TestProcessCmdRequiresFlags(t *testing.T) {
	processCmd := newProcessCmd()
	processCmd.SetArgs([]string{})

	err := processCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestServeCmdRegistered(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "process")
}

func TestBuildSinkSelectsFilesystemByDefault(t *testing.T) {
	sink, err := buildSink(config.ArtifactsConfig{Mode: "fs", Dir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &artifacts.FSSink{}, sink)
}

func TestBuildSinkRejectsBadRedisURL(t *testing.T) {
	_, err := buildSink(config.ArtifactsConfig{Mode: "redis", RedisURL: "://not-a-url"}, zap.NewNop())
	assert.Error(t, err)
}
