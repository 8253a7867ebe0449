package api

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCollectionTimeout = 15 * time.Second
	DefaultMetadataTimeout   = 60 * time.Second
	ScratchDirName           = "TKFontAssistant"

	DefaultSplitArguments      = `{{ arg .Target }}`
	DefaultUniteArguments      = `{{ arg .Destination }} {{ args .Sources }}`
	DefaultCollectionArguments = `-o {{ arg .Destination }} {{ args .Sources }}`
	DefaultExtractArguments    = `{{ arg .Source }} -o {{ arg .Destination }}`
	DefaultApplyArguments      = `{{ arg .Metadata }} {{ arg .Source }} -o {{ arg .Destination }}`
)

// Config is the optional fontassist.yaml configuration format.
type Config struct {
	ToolsDir   string          `yaml:"toolsDir"`
	ScratchDir string          `yaml:"scratchDir"`
	Workers    int             `yaml:"workers"`
	Tools      ToolsConfig     `yaml:"tools"`
	Timeouts   TimeoutConfig   `yaml:"timeouts"`
	Arguments  ArgumentsConfig `yaml:"arguments"`
}

// ToolsConfig holds tool locations, relative to ToolsDir unless absolute.
type ToolsConfig struct {
	Unite   string `yaml:"unite"`
	Otf2Otc string `yaml:"otf2otc"`
	Otc2Otf string `yaml:"otc2otf"`
	TtfName string `yaml:"ttfname"`
}

// TimeoutConfig bounds how long a tool may run. Zero waits forever.
type TimeoutConfig struct {
	Collection time.Duration `yaml:"collection"`
	Metadata   time.Duration `yaml:"metadata"`
}

// ArgumentsConfig holds the argument templates for every tool invocation.
type ArgumentsConfig struct {
	Split      string `yaml:"split"`
	Unite      string `yaml:"unite"`
	Collection string `yaml:"collection"`
	Extract    string `yaml:"extract"`
	Apply      string `yaml:"apply"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{
		ScratchDir: filepath.Join(os.TempDir(), ScratchDirName),
		Workers:    runtime.NumCPU(),
		Timeouts: TimeoutConfig{
			Collection: DefaultCollectionTimeout,
			Metadata:   DefaultMetadataTimeout,
		},
		Arguments: ArgumentsConfig{
			Split:      DefaultSplitArguments,
			Unite:      DefaultUniteArguments,
			Collection: DefaultCollectionArguments,
			Extract:    DefaultExtractArguments,
			Apply:      DefaultApplyArguments,
		},
	}

	if exe, err := os.Executable(); err == nil {
		cfg.ToolsDir = filepath.Dir(exe)
	}

	if runtime.GOOS == "windows" {
		cfg.Tools = ToolsConfig{
			Unite:   "UniteTTC.exe",
			Otf2Otc: filepath.Join("AFDKO", "Tools", "win", "otf2otc.cmd"),
			Otc2Otf: filepath.Join("AFDKO", "Tools", "win", "otc2otf.cmd"),
			TtfName: "ttfname3_zh.exe",
		}
	} else {
		cfg.Tools = ToolsConfig{
			Unite:   "UniteTTC",
			Otf2Otc: "otf2otc",
			Otc2Otf: "otc2otf",
			TtfName: "ttfname3_zh",
		}
	}

	return cfg
}

// LoadConfig reads a config file over the defaults and validates the result.
// An empty filename yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.ToolsDir != "" && !filepath.IsAbs(cfg.ToolsDir) {
		absConfig, err := filepath.Abs(filename)
		if err != nil {
			return nil, fmt.Errorf("resolving absolute path: %w", err)
		}
		cfg.ToolsDir = filepath.Join(filepath.Dir(absConfig), cfg.ToolsDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", filename, err)
	}

	return cfg, nil
}
