package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	ArchivePath   string `toml:"ArchivePath"`
	LogFile       string `toml:"LogFile"`
	Env           string `toml:"Env"`
	Owner         string `toml:"Owner"`
	Admin         string `toml:"Admin"`
	BidLimit      uint32 `toml:"BidLimit"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0])
	}

	applyDefaults(cfg, path)
	return cfg, Validate(cfg)
}

func applyDefaults(cfg *Config, path string) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8546"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	if strings.TrimSpace(cfg.ArchivePath) == "" {
		cfg.ArchivePath = filepath.Join(cfg.DataDir, "archive.db")
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "local"
	}
	if cfg.BidLimit == 0 {
		cfg.BidLimit = 10
	}
}

// Validate rejects configurations the daemon cannot boot with.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Owner) == "" {
		return fmt.Errorf("config: Owner must be set")
	}
	if strings.TrimSpace(cfg.Admin) == "" {
		return fmt.Errorf("config: Admin must be set")
	}
	if cfg.BidLimit > 100 {
		return fmt.Errorf("config: BidLimit %d exceeds the per-item maximum of 100", cfg.BidLimit)
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		Owner: "owner",
		Admin: "admin",
	}
	applyDefaults(cfg, path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
