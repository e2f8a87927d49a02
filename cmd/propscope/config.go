package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/propscope/pkg/analyzer"
	"github.com/gnana997/propscope/pkg/resolver"
	"github.com/gnana997/propscope/pkg/util"
)

// ProjectConfig holds the contents of .propscope/config.yaml.
type ProjectConfig struct {
	Version string `yaml:"version"`
	// Root is the default analysis root when a command gets no path.
	Root string `yaml:"root"`
	// Exclude overrides the built-in exclude globs.
	Exclude []string `yaml:"exclude"`
	// RespectBoundaries enables project-marker boundary checks.
	RespectBoundaries bool `yaml:"respect_boundaries"`
	// MaxDepth limits directory recursion. 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`
	// Workers overrides the parse worker count.
	Workers int `yaml:"workers"`
	// CacheSize bounds the extraction cache; negative disables it.
	CacheSize int `yaml:"cache_size"`
	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is json or text.
	LogFormat string `yaml:"log_format"`
	// MCPLogPath enables JSONL tool-call logging in serve mode.
	MCPLogPath string `yaml:"mcp_log_path"`
}

// loadProjectConfig reads .propscope/config.yaml from the current
// directory. Returns nil (no error) if the file does not exist.
func loadProjectConfig() (*ProjectConfig, error) {
	data, err := os.ReadFile(".propscope/config.yaml")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// buildAnalyzerConfig merges project config into analyzer defaults.
func buildAnalyzerConfig(cfg *ProjectConfig) analyzer.Config {
	out := analyzer.Config{Resolver: resolver.DefaultOptions()}
	if cfg == nil {
		return out
	}
	if len(cfg.Exclude) > 0 {
		out.Resolver.Exclude = cfg.Exclude
	}
	out.Resolver.RespectBoundaries = cfg.RespectBoundaries
	out.Resolver.MaxDepth = cfg.MaxDepth
	out.Workers = cfg.Workers
	out.CacheSize = cfg.CacheSize
	return out
}

// loggerConfig translates project config into the util logger config.
func loggerConfig(cfg *ProjectConfig) util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	if cfg == nil {
		return lc
	}
	if cfg.LogLevel != "" {
		lc.Level = util.LogLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		lc.Format = util.LogFormat(cfg.LogFormat)
	}
	return lc
}

// resolveRoot returns the analysis root: an explicit argument wins, then
// config, then the current directory.
func resolveRoot(arg string, cfg *ProjectConfig) string {
	if arg != "" {
		return arg
	}
	if cfg != nil && cfg.Root != "" {
		return cfg.Root
	}
	return "."
}
