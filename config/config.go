package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"

	"github.com/spektr-org/seriesagg/helpers"
)

type ServerConfig struct {
	Addr         string `json:"addr"`
	AllowOrigins string `json:"allow_origins"`
}

type TranslateConfig struct {
	Endpoint  string `json:"endpoint"`
	APIKey    string `json:"api_key,omitempty"`
	Source    string `json:"source"`
	CachePath string `json:"cache_path"`
}

type ExportConfig struct {
	Prefix string `json:"prefix"`
}

type Config struct {
	Server    ServerConfig                `json:"server"`
	Translate TranslateConfig             `json:"translate"`
	Export    ExportConfig                `json:"export"`
	Datasets  map[string][]helpers.Source `json:"datasets"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: "*",
		},
		Translate: TranslateConfig{
			Source:    "auto",
			CachePath: filepath.Join(ConfigDir(), "translations.json"),
		},
		Export:   ExportConfig{Prefix: "seriesagg"},
		Datasets: map[string][]helpers.Source{},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "seriesagg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "seriesagg")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// Load reads the default settings file, then applies .env and environment
// overrides.
func Load() (Config, error) {
	return LoadWithEnv(ConfigPath(), ".env")
}

// LoadWithEnv reads path, loads envFile into the process environment when it
// exists, and applies SERIESAGG_* overrides.
func LoadWithEnv(path, envFile string) (Config, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	def := DefaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Translate.Source == "" {
		cfg.Translate.Source = def.Translate.Source
	}
	if cfg.Translate.CachePath == "" {
		cfg.Translate.CachePath = def.Translate.CachePath
	}
	if cfg.Export.Prefix == "" {
		cfg.Export.Prefix = def.Export.Prefix
	}
	if cfg.Datasets == nil {
		cfg.Datasets = map[string][]helpers.Source{}
	}

	return cfg, nil
}

// envOverrides maps SERIESAGG_* variables onto config fields.
var envOverrides = map[string]func(*Config, string){
	"SERIESAGG_ADDR":          func(c *Config, v string) { c.Server.Addr = v },
	"SERIESAGG_ALLOW_ORIGINS": func(c *Config, v string) { c.Server.AllowOrigins = v },
	"SERIESAGG_TRANSLATE_URL": func(c *Config, v string) { c.Translate.Endpoint = v },
	"SERIESAGG_TRANSLATE_KEY": func(c *Config, v string) { c.Translate.APIKey = v },
	"SERIESAGG_CACHE_PATH":    func(c *Config, v string) { c.Translate.CachePath = v },
	"SERIESAGG_EXPORT_PREFIX": func(c *Config, v string) { c.Export.Prefix = v },
}

// ApplyEnv overwrites fields whose SERIESAGG_* variable is set and non-blank.
func ApplyEnv(cfg *Config) {
	for name, set := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			set(cfg, v)
		}
	}
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	// The API key belongs in the environment, not on disk.
	cfg.Translate.APIKey = ""

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
