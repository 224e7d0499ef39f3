package client

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDeploymentURL = "http://localhost:8080"
	defaultCallTimeout   = 10 * time.Second
)

type Config struct {
	DeploymentURL string        `toml:"deployment_url"`
	CallTimeout   time.Duration `toml:"-"`

	CallTimeoutSeconds int `toml:"call_timeout_seconds"`
}

// LoadConfig resolves the deployment to talk to. Precedence, lowest to
// highest: built-in default, config file (~/.config/todopop/config.toml,
// then ./todopop.toml), TODOPOP_URL environment variable.
func LoadConfig() Config {
	cfg := Config{
		DeploymentURL: DefaultDeploymentURL,
		CallTimeout:   defaultCallTimeout,
	}

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		toml.DecodeFile(path, &cfg)
	}

	if url := os.Getenv("TODOPOP_URL"); url != "" {
		cfg.DeploymentURL = url
	}

	if cfg.CallTimeoutSeconds > 0 {
		cfg.CallTimeout = time.Duration(cfg.CallTimeoutSeconds) * time.Second
	}

	return cfg
}

func configPaths() []string {
	var paths []string

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "todopop", "config.toml"))
	}

	paths = append(paths, "todopop.toml")

	return paths
}
