package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/spf13/pflag"
)

// configBuilder collects configs from every source. build merges them from
// lowest to highest priority: defaults, file, env, flags.
type configBuilder struct {
	defaults *StructuredConfig
	file     *StructuredConfig
	env      *StructuredConfig
	flags    *StructuredConfig
	err      error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range []*StructuredConfig{b.defaults, b.file, b.env, b.flags} {
		if cfg == nil {
			continue
		}
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.defaults = Defaults()
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.env = envCfg
	return b
}

func (b *configBuilder) withFlags(fs *pflag.FlagSet) *configBuilder {
	flagsCfg, err := parseFlags(fs)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error reading flags: %w", err))
		return b
	}

	b.flags = flagsCfg
	return b
}

// withFile loads the config file named by flags or env, in that order. With
// neither set, DefaultConfigFile is loaded from the working directory if it
// exists.
func (b *configBuilder) withFile() *configBuilder {
	var path string
	for _, cfg := range []*StructuredConfig{b.flags, b.env} {
		if cfg != nil && cfg.ConfigFile != "" {
			path = cfg.ConfigFile
			break
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return b
		}
		path = DefaultConfigFile
	}

	fileCfg, err := parseFile(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	fileCfg.ConfigFile = path

	b.file = fileCfg
	return b
}
