package commands_test

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/console-client/cmd/admctl/commands"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout

	read, write, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = write

	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, write.Close())

	data, err := io.ReadAll(read)
	require.NoError(t, err)

	return string(data)
}

func TestVersionCommand_JSONOutput(t *testing.T) {
	info := commands.BuildInfo{Version: "1.2.3", Commit: "abc1234", Built: "2026-08-26"}
	cmd := commands.NewVersionCommand(info)

	viper.Set("output", "json")

	defer viper.Set("output", "table")

	output := captureStdout(t, func() {
		require.NoError(t, cmd.RunE(cmd, nil))
	})

	var decoded commands.BuildInfo

	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, info, decoded)
}

func TestVersionCommand_TableOutput(t *testing.T) {
	info := commands.BuildInfo{Version: "1.2.3", Commit: "abc1234", Built: "2026-08-26"}
	cmd := commands.NewVersionCommand(info)

	viper.Set("output", "table")

	output := captureStdout(t, func() {
		require.NoError(t, cmd.RunE(cmd, nil))
	})

	assert.Contains(t, output, "1.2.3")
	assert.Contains(t, output, "abc1234")
	assert.Contains(t, output, "2026-08-26")
}
