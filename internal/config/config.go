package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the client reads at startup. Gameplay balance
// numbers (thresholds, penalties, probabilities) live here rather than as
// literals so they can be tuned without touching game logic.
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`

	Game struct {
		Theme          string `yaml:"theme"`
		TotalQuestions int    `yaml:"total_questions"`
	} `yaml:"game"`

	Timer struct {
		WarningSeconds  int `yaml:"warning_seconds"`
		CriticalSeconds int `yaml:"critical_seconds"`
	} `yaml:"timer"`

	TimeLimit struct {
		MinSeconds     int     `yaml:"min_seconds"`
		MaxSeconds     int     `yaml:"max_seconds"`
		WordsPerSecond float64 `yaml:"words_per_second"`
	} `yaml:"time_limit"`

	Rush struct {
		Penalty          int     `yaml:"penalty"`
		EliminationFloor int     `yaml:"elimination_floor"`
		DeathProbability float64 `yaml:"death_probability"`
	} `yaml:"rush"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the shipped gameplay balance. The rush death probability
// and late-game compassion heuristics are deliberate design choices carried
// over from the original tuning.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.TimeoutSeconds = 30
	cfg.Game.Theme = "haunted_house"
	cfg.Game.TotalQuestions = 5
	cfg.Timer.WarningSeconds = 30
	cfg.Timer.CriticalSeconds = 10
	cfg.TimeLimit.MinSeconds = 120
	cfg.TimeLimit.MaxSeconds = 500
	cfg.TimeLimit.WordsPerSecond = 0.4
	cfg.Rush.Penalty = 30
	cfg.Rush.EliminationFloor = 25
	cfg.Rush.DeathProbability = 0.7
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the optional yaml config file at path over the defaults, then
// applies environment overrides. A missing file is not an error; a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("FRIGHTFATE_API_URL", cfg.API.BaseURL)
	cfg.API.TimeoutSeconds = getEnvAsInt("FRIGHTFATE_API_TIMEOUT_SEC", cfg.API.TimeoutSeconds)
	cfg.Game.Theme = getEnv("FRIGHTFATE_THEME", cfg.Game.Theme)
	cfg.Game.TotalQuestions = getEnvAsInt("FRIGHTFATE_TOTAL_QUESTIONS", cfg.Game.TotalQuestions)
	cfg.Log.Level = getEnv("FRIGHTFATE_LOG_LEVEL", cfg.Log.Level)
}

func (c *Config) validate() error {
	if c.TimeLimit.MinSeconds <= 0 || c.TimeLimit.MaxSeconds < c.TimeLimit.MinSeconds {
		return fmt.Errorf("invalid time limit range [%d, %d]", c.TimeLimit.MinSeconds, c.TimeLimit.MaxSeconds)
	}
	if c.TimeLimit.WordsPerSecond <= 0 {
		return fmt.Errorf("words_per_second must be positive, got %v", c.TimeLimit.WordsPerSecond)
	}
	if c.Rush.DeathProbability < 0 || c.Rush.DeathProbability > 1 {
		return fmt.Errorf("rush death probability must be in [0, 1], got %v", c.Rush.DeathProbability)
	}
	if c.Game.TotalQuestions < 1 {
		return fmt.Errorf("total_questions must be at least 1, got %d", c.Game.TotalQuestions)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
