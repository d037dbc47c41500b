package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

// isolate runs the test in an empty working directory with no config
// environment variables set.
func isolate(t *testing.T) {
	t.Helper()
	setEnvVars(t, nil)
	t.Chdir(t.TempDir())
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_EmptyBuilderFailsValidation verifies that a config without an
// address is rejected.
func TestBuild_EmptyBuilderFailsValidation(t *testing.T) {
	_, err := newConfigBuilder().build()
	assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
}

// TestBuild_Priority verifies defaults < file < env < flags.
func TestBuild_Priority(t *testing.T) {
	b := newConfigBuilder().withDefaults()
	b.file = &StructuredConfig{Chat: Chat{Channel: "file", Echo: "server"}, Log: Log{Level: "error"}}
	b.env = &StructuredConfig{Chat: Chat{Channel: "env"}, Log: Log{Level: "warn"}}
	b.flags = &StructuredConfig{Chat: Chat{Channel: "flags"}}

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "flags", cfg.Chat.Channel)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "server", cfg.Chat.Echo)
	assert.Equal(t, 1000, cfg.Chat.ScrollbackCapacity)
	assert.Equal(t, time.Second, cfg.Reconnect.Base)
}

// TestBuild_ZeroValuesDoNotOverride verifies that zero fields in a higher
// priority source keep the lower priority value.
func TestBuild_ZeroValuesDoNotOverride(t *testing.T) {
	b := newConfigBuilder().withDefaults()
	b.env = &StructuredConfig{Reconnect: Reconnect{Cap: time.Minute}}

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, Reconnect{Base: time.Second, Cap: time.Minute, JitterPercent: 20}, cfg.Reconnect)
}

// ── withFile ──────────────────────────────────────────────────────────────────

func TestWithFile_TOML(t *testing.T) {
	isolate(t)
	path := writeTempConfig(t, "tuisen.toml", `
[auth]
username = "bob"
token = "secret"

[adapter]
address = "irc://localhost:7000"
read_timeout = "2m"

[chat]
channel = "#xqc"
scrollback = 200
anonymous_fallback = true

[reconnect]
base = "250ms"
cap = "5s"
jitter_percent = 5
`)

	cfg, err := newConfigBuilder().withDefaults().withEnv().withFlags(newFlagSet(t, "--config", path)).withFile().build()
	require.NoError(t, err)

	assert.Equal(t, Auth{Username: "bob", Token: "secret"}, cfg.Auth)
	assert.Equal(t, "irc://localhost:7000", cfg.Adapter.Address)
	assert.Equal(t, 2*time.Minute, cfg.Adapter.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Adapter.DialTimeout)
	assert.Equal(t, Chat{Channel: "#xqc", ScrollbackCapacity: 200, Echo: "local", AnonymousFallback: true}, cfg.Chat)
	assert.Equal(t, Reconnect{Base: 250 * time.Millisecond, Cap: 5 * time.Second, JitterPercent: 5}, cfg.Reconnect)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestWithFile_TOMLTopLevelKeys(t *testing.T) {
	isolate(t)
	path := writeTempConfig(t, "legacy.toml", `
username = "alice"
token = "oauth:abc"
channel = "forsen"
`)

	fileCfg, err := parseFile(path)
	require.NoError(t, err)
	assert.Equal(t, Auth{Username: "alice", Token: "oauth:abc"}, fileCfg.Auth)
	assert.Equal(t, "forsen", fileCfg.Chat.Channel)
}

func TestWithFile_JSON(t *testing.T) {
	isolate(t)
	path := writeTempConfig(t, "config.json", `{
		"chat": {"channel": "lirik", "echo": "server"},
		"adapter": {"write_timeout": "1s", "dial_timeout": 2000000000},
		"log": {"level": "debug"}
	}`)
	t.Setenv("TUISEN_CONFIG", path)

	cfg, err := newConfigBuilder().withDefaults().withEnv().withFlags(nil).withFile().build()
	require.NoError(t, err)
	assert.Equal(t, "lirik", cfg.Chat.Channel)
	assert.Equal(t, "server", cfg.Chat.Echo)
	assert.Equal(t, time.Second, cfg.Adapter.WriteTimeout)
	assert.Equal(t, 2*time.Second, cfg.Adapter.DialTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestWithFile_FlagPathBeatsEnvPath(t *testing.T) {
	isolate(t)
	envPath := writeTempConfig(t, "env.toml", `channel = "from-env-file"`)
	flagPath := writeTempConfig(t, "flag.toml", `channel = "from-flag-file"`)
	t.Setenv("TUISEN_CONFIG", envPath)

	cfg, err := GetStructuredConfig(newFlagSet(t, "-c", flagPath))
	require.NoError(t, err)
	assert.Equal(t, "from-flag-file", cfg.Chat.Channel)
}

func TestWithFile_DefaultFileInWorkingDir(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte(`channel = "cwd"`), 0o600))

	cfg, err := GetStructuredConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "cwd", cfg.Chat.Channel)
	assert.Equal(t, DefaultConfigFile, cfg.ConfigFile)
}

func TestWithFile_Missing(t *testing.T) {
	isolate(t)

	_, err := GetStructuredConfig(newFlagSet(t, "-c", filepath.Join(t.TempDir(), "nope.toml")))
	assert.Error(t, err)
}

func TestWithFile_Malformed(t *testing.T) {
	isolate(t)
	path := writeTempConfig(t, "bad.toml", `[chat`)

	_, err := GetStructuredConfig(newFlagSet(t, "-c", path))
	assert.Error(t, err)
}

func TestWithFile_BadDuration(t *testing.T) {
	isolate(t)
	path := writeTempConfig(t, "bad.json", `{"reconnect": {"base": "forever"}}`)

	_, err := GetStructuredConfig(newFlagSet(t, "-c", path))
	assert.Error(t, err)
}
