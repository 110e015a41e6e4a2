package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	cst "wuyrush.io/quire/constants"
)

// Config captures process configuration resolved from environment exactly once
// at startup. Everything downstream takes the resolved struct, so tests inject
// their own values instead of reaching into ambient env state.
type Config struct {
	Host, Port string
	// DataDir is the storage root holding all managed documents
	DataDir string
	// CredsFile is the YAML file mapping username to password hash
	CredsFile string
	// SessionKey signs session cookies. Empty means a random per-process key
	SessionKey []byte
	Verbose    bool

	SignInAttemptMax    int
	SignInAttemptWindow time.Duration
}

// loadConfig reads configuration from env vars. The test profile flag redirects
// both the document root and the credential file to isolated test locations.
func loadConfig() Config {
	viper.AutomaticEnv()
	viper.SetDefault(cst.EnvAppPort, "8080")
	viper.SetDefault(cst.EnvDataDir, "data")
	viper.SetDefault(cst.EnvCredsFile, "users.yml")
	viper.SetDefault(cst.EnvSignInAttemptMax, 5)
	viper.SetDefault(cst.EnvSignInAttemptWindow, "5m")

	cfg := Config{
		Host:                viper.GetString(cst.EnvAppHost),
		Port:                viper.GetString(cst.EnvAppPort),
		DataDir:             viper.GetString(cst.EnvDataDir),
		CredsFile:           viper.GetString(cst.EnvCredsFile),
		Verbose:             viper.GetBool(cst.EnvVerbose),
		SignInAttemptMax:    viper.GetInt(cst.EnvSignInAttemptMax),
		SignInAttemptWindow: viper.GetDuration(cst.EnvSignInAttemptWindow),
	}
	if key := viper.GetString(cst.EnvSessionKey); key != "" {
		cfg.SessionKey = []byte(key)
	}
	if viper.GetBool(cst.EnvTestProfile) {
		cfg.DataDir = filepath.Join("test", "data")
		cfg.CredsFile = filepath.Join("test", "users.yml")
	}
	return cfg
}
