package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig  `yaml:"server" mapstructure:"server"`
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
	Sheets    SheetsConfig  `yaml:"sheets" mapstructure:"sheets"`
	Companies []string      `yaml:"companies" mapstructure:"companies"`
	Upload    UploadConfig  `yaml:"upload" mapstructure:"upload"`
	Cache     CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Extract   ExtractConfig `yaml:"extract" mapstructure:"extract"`
}

// ServerConfig configures the wizard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SheetsConfig holds the Google Sheets destination and service-account
// credentials. Either CredentialsFile (a service-account JSON key) or the
// ClientEmail/PrivateKey pair must be set.
type SheetsConfig struct {
	SpreadsheetID   string  `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CredentialsFile string  `yaml:"credentials_file" mapstructure:"credentials_file"`
	ClientEmail     string  `yaml:"client_email" mapstructure:"client_email"`
	PrivateKey      string  `yaml:"private_key" mapstructure:"private_key"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// UploadConfig constrains accepted upload files.
type UploadConfig struct {
	MaxFileSizeMB     int      `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`
}

// CacheConfig configures the per-session row cache.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// ExtractConfig configures the entity extraction engine.
type ExtractConfig struct {
	// RulesFile optionally points at a YAML file overriding the built-in
	// extraction patterns.
	RulesFile     string `yaml:"rules_file" mapstructure:"rules_file"`
	MinConfidence int    `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHEETSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("sheets.rate_limit_rps", 1.0)
	v.SetDefault("upload.max_file_size_mb", 16)
	v.SetDefault("upload.allowed_extensions", []string{"csv", "xlsx"})
	v.SetDefault("cache.ttl_minutes", 10)
	v.SetDefault("extract.min_confidence", 60)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings every pipeline run depends on. Commands that
// never touch the spreadsheet may skip sheets validation via requireSheets.
func (c *Config) Validate(requireSheets bool) error {
	if len(c.Companies) == 0 {
		return eris.New("config: at least one company must be configured")
	}
	if requireSheets {
		if c.Sheets.SpreadsheetID == "" {
			return eris.New("config: sheets.spreadsheet_id is required")
		}
		if c.Sheets.CredentialsFile == "" && (c.Sheets.ClientEmail == "" || c.Sheets.PrivateKey == "") {
			return eris.New("config: sheets credentials required (credentials_file, or client_email + private_key)")
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
