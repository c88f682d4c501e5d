package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{name: "release build", version: "1.2.0"},
		{name: "dev build", version: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version)

			out, err := executeCommand(t, nil, "version")

			require.NoError(t, err)
			assert.Contains(t, out, "docqa version "+tt.version)
			assert.Contains(t, out, runtime.Version())
		})
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	withVersion(t, "1.2.0")
	t.Cleanup(func() { versionJSON = false })

	out, err := executeCommand(t, nil, "version", "--json")
	require.NoError(t, err)

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := executeCommand(t, nil, "version", "extra")

	assert.Error(t, err)
}
