// Package config loads server settings from an optional YAML file with
// environment variables as the override layer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server binary needs to start.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`
	// DBPath is the sqlite local cache file.
	DBPath string `yaml:"db_path"`
	// RemoteURL is the base URL of the remote session store; empty means
	// no remote, local cache authoritative.
	RemoteURL string `yaml:"remote_url"`
	// Identity is the opaque identity token namespacing the remote
	// collection.
	Identity string `yaml:"identity"`
	// TemplateDir and StaticDir locate the web assets.
	TemplateDir string `yaml:"template_dir"`
	StaticDir   string `yaml:"static_dir"`
}

func defaults() Config {
	return Config{
		Port:        "8080",
		DBPath:      "study.db",
		Identity:    "local",
		TemplateDir: "web/templates",
		StaticDir:   "web/static",
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// optional file
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	overlay(&cfg.Port, "PORT")
	overlay(&cfg.DBPath, "DB_PATH")
	overlay(&cfg.RemoteURL, "REMOTE_URL")
	overlay(&cfg.Identity, "IDENTITY")
	overlay(&cfg.TemplateDir, "TEMPLATE_DIR")
	overlay(&cfg.StaticDir, "STATIC_DIR")

	if cfg.Identity == "" {
		cfg.Identity = "local"
	}
	return cfg, nil
}

func overlay(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
