// Package config loads the server configuration file and the API
// credentials from the environment.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/quizreel/quizreel/internal/metadata"
	"github.com/quizreel/quizreel/internal/storage"
)

// Server is the configuration for serve mode. All fields have working
// defaults; a config file only needs to name what it overrides.
type Server struct {
	Addr      string `yaml:"addr"`
	Profile   string `yaml:"profile"`
	OutputDir string `yaml:"output_dir"`
	Verbose   bool   `yaml:"verbose"`

	Upload UploadConfig `yaml:"upload"`
}

// UploadConfig controls the optional post-render upload.
type UploadConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Bucket      string `yaml:"bucket"`
	Endpoint    string `yaml:"endpoint"`
	Region      string `yaml:"region"`
	DeleteLocal bool   `yaml:"delete_local"`
}

// Default returns the built-in server configuration.
func Default() Server {
	return Server{
		Addr:      ":8080",
		Profile:   "tiktok",
		OutputDir: "output",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Server, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// CredentialsFromEnv reads the metadata API keys from the environment.
// Keys carried in a manifest take precedence at normalization time.
func CredentialsFromEnv() metadata.Credentials {
	return metadata.Credentials{
		OMDBAPIKey: os.Getenv("OMDB_API_KEY"),
		TMDBAPIKey: os.Getenv("TMDB_API_KEY"),
	}
}

// StorageFromEnv builds the storage configuration from the environment,
// with the config file supplying bucket and endpoint overrides.
func StorageFromEnv(up UploadConfig) storage.Config {
	cfg := storage.Config{
		KeyID:    os.Getenv("B2_KEY_ID"),
		AppKey:   os.Getenv("B2_APP_KEY"),
		Bucket:   os.Getenv("B2_BUCKET_NAME"),
		Endpoint: os.Getenv("B2_ENDPOINT"),
		Region:   os.Getenv("B2_REGION"),
	}
	if up.Bucket != "" {
		cfg.Bucket = up.Bucket
	}
	if up.Endpoint != "" {
		cfg.Endpoint = up.Endpoint
	}
	if up.Region != "" {
		cfg.Region = up.Region
	}
	return cfg
}
