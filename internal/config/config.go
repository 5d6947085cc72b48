package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

type Config struct {
	Database DatabaseConfig
	SIS      SISConfig
	Matching MatchingConfig
	Profiles ProfilesConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type SISConfig struct {
	DatabaseURL string // MySQL DSN for the student information system, read-only (e.g., sis_ro:secret@tcp(sis.example.edu:3306)/sis)
}

type MatchingConfig struct {
	Profile       string  // active profile name from profiles.yaml
	Threshold     float64 // resolved maximum distance for a positive match
	DescriptorDim int     // expected descriptor length (default 128)
}

type ProfilesConfig struct {
	Profiles map[string]MatchProfile `yaml:"profiles"`
}

type MatchProfile struct {
	Threshold   float64 `yaml:"threshold"`
	Description string  `yaml:"description"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var profiles ProfilesConfig
	if err := yaml.Unmarshal(profilesYAML, &profiles); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded profiles.yaml: " + err.Error())
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		SIS: SISConfig{
			DatabaseURL: os.Getenv("SIS_DATABASE_URL"),
		},
		Profiles: profiles,
	}

	// MATCH_PROFILE picks the base threshold, MATCH_THRESHOLD overrides it.
	profileName := os.Getenv("MATCH_PROFILE")
	if _, ok := profiles.Profiles[profileName]; !ok {
		profileName = "standard"
	}
	profile := profiles.Profiles[profileName]

	cfg.Matching = MatchingConfig{
		Profile:       profileName,
		Threshold:     envFloat("MATCH_THRESHOLD", profile.Threshold),
		DescriptorDim: envInt("MATCH_DESCRIPTOR_DIM", 128),
	}

	return cfg
}

// GetProfile returns a named matching profile, with fallback to the standard profile
func (c *Config) GetProfile(name string) MatchProfile {
	if profile, ok := c.Profiles.Profiles[name]; ok {
		return profile
	}
	return c.Profiles.Profiles["standard"]
}
