package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withEnv replaces the environment seen by parseFlags.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := lookupEnv
	lookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = orig })
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		env         map[string]string
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "short flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "10"},
			expected: &Config{
				ServerEndpointAddr: "127.0.0.1:9090", OnlineCheckInterval: 10 * time.Second,
			},
		},
		{
			name: "backend and storage",
			args: []string{"cmd", "-backend", "local", "-db", "/tmp/q.db", "-timeout=3", "-unknown", "x"},
			expected: &Config{
				Backend: BackendLocal, DatabasePath: "/tmp/q.db", CallTimeout: 3 * time.Second,
			},
		},
		{
			name: "environment fills unset flags",
			args: []string{"cmd", "-backend", "grpc"},
			env:  map[string]string{"TOKENQUEST_BACKEND": "nats", "TOKENQUEST_NATS": "nats://q:4222", "TOKENQUEST_I": "7"},
			expected: &Config{
				Backend: BackendGRPC, NATSURL: "nats://q:4222", OnlineCheckInterval: 7 * time.Second,
			},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
		{name: "incorrect env value", args: []string{"cmd"}, env: map[string]string{"TOKENQUEST_TIMEOUT": "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args
			withEnv(t, tt.env)

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
