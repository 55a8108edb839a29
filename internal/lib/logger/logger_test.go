package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ByEnv(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		wantJSON  bool
		wantDebug bool
	}{
		{name: "local", env: envLocal, wantJSON: false, wantDebug: true},
		{name: "dev", env: envDev, wantJSON: true, wantDebug: true},
		{name: "prod", env: envProd, wantJSON: true, wantDebug: false},
		{name: "unknown falls back to local", env: "qa", wantJSON: false, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.env, &buf)

			log.Debug("debug line")
			if tt.wantDebug {
				assert.Contains(t, buf.String(), "debug line")
			} else {
				assert.Empty(t, buf.String())
			}

			buf.Reset()
			log.Info("info line")
			if tt.wantJSON {
				var m map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
				assert.Equal(t, "info line", m["msg"])
			} else {
				assert.Contains(t, buf.String(), "msg=\"info line\"")
			}
		})
	}
}

func TestSetup_WithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "marketplace.log")
	log, err := Setup(envProd, file)
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Info("written")
}
