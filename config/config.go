package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Store        StoreConfig        `mapstructure:"store"`
	Auth         AuthConfig         `mapstructure:"auth"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Ollama       OllamaConfig       `mapstructure:"ollama"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Ninjas       NinjasConfig       `mapstructure:"ninjas"`
	Generation   GenerationConfig   `mapstructure:"generation"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Quiz         QuizConfig         `mapstructure:"quiz"`
	Tts          TtsConfig          `mapstructure:"tts"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects where profiles live.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "sqlite"
	Path    string `mapstructure:"path"`
	Backup  bool   `mapstructure:"backup"` // keep a .bak of the previous file
}

type AuthConfig struct {
	SessionSecret string        `mapstructure:"session_secret"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
	HashPasswords bool          `mapstructure:"hash_passwords"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "ollama" or "openai"
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`   // Optional, defaults to OpenAI API
	MaxTokens int    `mapstructure:"max_tokens"` // Optional, defaults to model's max
	Timeout   int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// NinjasConfig configures the API Ninjas recipe search.
type NinjasConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type GenerationConfig struct {
	Cooldown time.Duration `mapstructure:"cooldown"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type GamificationConfig struct {
	Table        string                  `mapstructure:"table"` // "extended" or "classic"
	Points       PointsConfig            `mapstructure:"points"`
	Achievements []AchievementDefinition `mapstructure:"achievements"`
}

// PointsConfig holds the award for each user action.
type PointsConfig struct {
	Search         int `mapstructure:"search"`
	Recipe         int `mapstructure:"recipe"`
	Menu           int `mapstructure:"menu"`
	Leftover       int `mapstructure:"leftover"`
	LeftoverRecipe int `mapstructure:"leftover_recipe"`
	Event          int `mapstructure:"event"`
	CourseSuggest  int `mapstructure:"course_suggest"`
	QuizCorrect    int `mapstructure:"quiz_correct"`
	QuizWrong      int `mapstructure:"quiz_wrong"`
	Beverage       int `mapstructure:"beverage"`
	Dessert        int `mapstructure:"dessert"`
}

// AchievementDefinition is a custom achievement row from the config file.
type AchievementDefinition struct {
	Name        string `mapstructure:"name"`
	Category    string `mapstructure:"category"`
	Requirement int    `mapstructure:"requirement"`
	Points      int    `mapstructure:"points"`
	Description string `mapstructure:"description"`
	Rule        string `mapstructure:"rule"`
}

type QuizConfig struct {
	Dir string `mapstructure:"dir"`
}

type TtsConfig struct {
	Type            string `mapstructure:"type"`
	Enabled         bool   `mapstructure:"enabled"`
	Voice           string `mapstructure:"voice"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "user_data.json")
	v.SetDefault("store.backup", true)

	v.SetDefault("auth.session_secret", "your-secret-key-change-this-in-production")
	v.SetDefault("auth.jwt_secret", "your-jwt-secret-change-this-in-production")
	v.SetDefault("auth.token_lifetime", 24*time.Hour)
	v.SetDefault("auth.hash_passwords", false)

	v.SetDefault("llm.provider", "ollama")

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.timeout", 60)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 60)
	v.SetDefault("openai.max_tokens", 1500)

	v.SetDefault("ninjas.base_url", "https://api.api-ninjas.com/v1")
	v.SetDefault("ninjas.timeout", 10)

	v.SetDefault("generation.cooldown", 30*time.Second)
	v.SetDefault("generation.timeout", 60*time.Second)

	v.SetDefault("gamification.table", "extended")
	v.SetDefault("gamification.points.search", 5)
	v.SetDefault("gamification.points.recipe", 5)
	v.SetDefault("gamification.points.menu", 15)
	v.SetDefault("gamification.points.leftover", 2)
	v.SetDefault("gamification.points.leftover_recipe", 5)
	v.SetDefault("gamification.points.event", 10)
	v.SetDefault("gamification.points.course_suggest", 2)
	v.SetDefault("gamification.points.quiz_correct", 5)
	v.SetDefault("gamification.points.quiz_wrong", -10)
	v.SetDefault("gamification.points.beverage", 5)
	v.SetDefault("gamification.points.dessert", 5)

	v.SetDefault("quiz.dir", "./data/quiz")

	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.type", "google")
	v.SetDefault("tts.voice", "en-US-Standard-C")

	v.SetDefault("log.level", "info")
}

// Load reads config.yaml, merges config.local.yaml on top and applies
// PLATEPALS_ environment overrides. A missing config file is not an error.
func Load(paths ...string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	SetDefaults(v)

	v.SetEnvPrefix("PLATEPALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	// Local overrides (ignored by git)
	v.SetConfigName("config.local")
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
