package config

import (
	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig            = "config"
	FlagAddress           = "address"
	FlagChannel           = "channel"
	FlagUsername          = "username"
	FlagToken             = "token"
	FlagScrollback        = "scrollback"
	FlagEcho              = "echo"
	FlagAnonymousFallback = "anonymous-fallback"
	FlagLogPath           = "log-file"
	FlagLogLevel          = "log-level"
)

// RegisterFlags defines the client flags on fs.
//
// Flags:
//
//	-c/--config            JSON or TOML config file
//	-a/--address           server URL, irc://host:port or ircs://host:port
//	-C/--channel           channel to join
//	-u/--username          login name
//	-t/--token             OAuth token
//	--scrollback           number of lines kept in memory
//	--echo                 local or server
//	--anonymous-fallback   continue anonymously when authentication fails
//	--log-file             log file path
//	--log-level            log level (debug, info, warn, error)
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "JSON or TOML config file path")
	fs.StringP(FlagAddress, "a", "", "server URL (irc://host:port or ircs://host:port)")
	fs.StringP(FlagChannel, "C", "", "channel to join")
	fs.StringP(FlagUsername, "u", "", "login name")
	fs.StringP(FlagToken, "t", "", "OAuth token")
	fs.Int(FlagScrollback, 0, "number of chat lines kept in memory")
	fs.String(FlagEcho, "", "who shows your own messages: local or server")
	fs.Bool(FlagAnonymousFallback, false, "continue anonymously when authentication fails")
	fs.String(FlagLogPath, "", "log file path")
	fs.String(FlagLogLevel, "", "log level (debug, info, warn, error)")
}

// parseFlags builds a StructuredConfig from the flags the user actually set,
// so that unset flags never override other sources.
func parseFlags(fs *pflag.FlagSet) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	if fs == nil {
		return cfg, nil
	}

	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}

	str(FlagConfig, &cfg.ConfigFile)
	str(FlagAddress, &cfg.Adapter.Address)
	str(FlagChannel, &cfg.Chat.Channel)
	str(FlagUsername, &cfg.Auth.Username)
	str(FlagToken, &cfg.Auth.Token)
	str(FlagEcho, &cfg.Chat.Echo)
	str(FlagLogPath, &cfg.Log.Path)
	str(FlagLogLevel, &cfg.Log.Level)

	if err == nil && fs.Changed(FlagScrollback) {
		cfg.Chat.ScrollbackCapacity, err = fs.GetInt(FlagScrollback)
	}
	if err == nil && fs.Changed(FlagAnonymousFallback) {
		cfg.Chat.AnonymousFallback, err = fs.GetBool(FlagAnonymousFallback)
	}

	return cfg, err
}
