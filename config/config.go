package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
)

type SourceType = string

var (
	HTTPSource = SourceType("http")
	FileSource = SourceType("file")
)

const baseCfgPath = "freegames/config.toml"

type Config struct {
	Source          Source            `toml:"source"`
	Render          Render            `toml:"render"`
	History         History           `toml:"history"`
	MetricsTextfile string            `toml:"metrics_textfile"` // node_exporter textfile collector target, empty disables
	Filters         map[string]Filter `toml:"filters"`          // Named filters that can be referenced by apply_filters
	ApplyFilters    []string          `toml:"apply_filters"`    // Names of filters to apply (pipeline)
}

type Source struct {
	T                  SourceType    `toml:"type"`
	URL                string        `toml:"url"`  // empty means the public storefront endpoint
	Path               string        `toml:"path"` // feed file for the "file" source
	InsecureSkipVerify bool          `toml:"insecure_skip_verify"`
	Timeout            time.Duration `toml:"timeout"` // 0 = no client timeout
	UserAgent          string        `toml:"user_agent"`
}

type Render struct {
	Locale     string `toml:"locale"`      // e.g. "zh-CN", "en"
	ExitPolicy string `toml:"exit_policy"` // "strict" or "lenient"
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Keep    int    `toml:"keep"` // newest reports to retain, 0 = unbounded
}

// Filter defines rules for excluding catalog entries
type Filter struct {
	ExcludePatterns []string `toml:"exclude_patterns"` // Regex patterns matched against title and description
	FreeOnly        bool     `toml:"free_only"`        // Primary offer must be a 100% discount
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	return Config{
		Source: Source{
			T:                  HTTPSource,
			InsecureSkipVerify: true,
		},
		Render: Render{
			Locale:     "zh-CN",
			ExitPolicy: "strict",
		},
		History: History{
			Path: DefaultHistoryPath(),
			Keep: 100,
		},
		Filters: map[string]Filter{},
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	return "config.toml"
}

// DefaultHistoryPath returns the default history database path
func DefaultHistoryPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "history.db"
		}
		dataDir = path.Join(home, ".local/share")
	}
	return path.Join(dataDir, "freegames", "history.db")
}
