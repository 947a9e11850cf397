package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fortunecookie/internal/app"
	"fortunecookie/internal/protocol/anchor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FORTUNE_HOME", t.TempDir())

	cfg, err := app.LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, anchor.DefaultProgramID.String(), cfg.ProgramID)
	require.Equal(t, "confirmed", cfg.Commitment)
	require.Equal(t, 60*time.Second, cfg.ConfirmTimeout)
	require.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	require.Equal(t, 10*time.Second, cfg.Gesture.InitTimeout)
	require.Equal(t, 5*time.Second, cfg.Gesture.CameraTimeout)
	require.Equal(t, 0.2, cfg.Gesture.Low)
	require.Equal(t, 0.4, cfg.Gesture.High)
	require.Equal(t, 2*time.Second, cfg.Gesture.Refractory)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
rpc_url = "http://ledger.internal:8899"
commitment = "finalized"
poll_interval = "250ms"
log_level = "debug"

[gesture]
high = 0.5
camera_timeout = "3s"
`)
	t.Setenv("FORTUNE_HOME", t.TempDir())
	t.Setenv("FORTUNE_COMMITMENT", "processed")
	t.Setenv("FORTUNE_GESTURE_LOW", "0.1")

	cfg, err := app.LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "http://ledger.internal:8899", cfg.RPCURL)
	require.Equal(t, "processed", cfg.Commitment, "env overrides file")
	require.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 0.1, cfg.Gesture.Low)
	require.Equal(t, 0.5, cfg.Gesture.High)
	require.Equal(t, 3*time.Second, cfg.Gesture.CameraTimeout)
	require.Equal(t, 10*time.Second, cfg.Gesture.InitTimeout, "unset keys keep defaults")
}

func TestLoadConfig_HomeFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigFile), []byte(`rpc_url = "http://from-home"`), 0o600))
	t.Setenv("FORTUNE_HOME", home)

	cfg, err := app.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "http://from-home", cfg.RPCURL)
	require.Equal(t, home, cfg.Home)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("FORTUNE_HOME", t.TempDir())

	_, err := app.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err, "explicit path must exist")

	_, err = app.LoadConfig(writeConfig(t, `rpc_ur1 = "typo"`))
	require.ErrorContains(t, err, "unknown keys")

	t.Setenv("FORTUNE_CONFIRM_TIMEOUT", "soon")
	_, err = app.LoadConfig("")
	require.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*app.Config){
		"empty rpc url":       func(c *app.Config) { c.RPCURL = " " },
		"bad program id":      func(c *app.Config) { c.ProgramID = "not-base58!" },
		"bad commitment":      func(c *app.Config) { c.Commitment = "max" },
		"zero confirm":        func(c *app.Config) { c.ConfirmTimeout = 0 },
		"zero poll":           func(c *app.Config) { c.PollInterval = 0 },
		"bad level":           func(c *app.Config) { c.LogLevel = "loud" },
		"low above high":      func(c *app.Config) { c.Gesture.Low, c.Gesture.High = 0.5, 0.4 },
		"low equals high":     func(c *app.Config) { c.Gesture.Low, c.Gesture.High = 0.3, 0.3 },
		"zero init timeout":   func(c *app.Config) { c.Gesture.InitTimeout = 0 },
		"negative camera":     func(c *app.Config) { c.Gesture.CameraTimeout = -time.Second },
		"burst with limiting": func(c *app.Config) { c.RPCBurst = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := app.DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
