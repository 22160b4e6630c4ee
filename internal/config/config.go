package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	AppHost string        `mapstructure:"host"`
}

type DBConfig struct {
	Source string `mapstructure:"source"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	// TokenSecret signs the session tokens rendered as QR codes. Separate from
	// Secret so rotating user auth does not invalidate codes already on screen.
	TokenSecret string `mapstructure:"token_secret"`
}

type SessionConfig struct {
	// AllowedDurations enumerates the accepted duration_minutes values for
	// session creation. Anything outside the set is a validation error.
	AllowedDurations []int `mapstructure:"allowed_durations"`
	// RetentionHours controls the background sweep of expired sessions.
	// Attendance records are kept; only inert sessions older than the
	// retention window are removed.
	RetentionHours int `mapstructure:"retention_hours"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/configs")
	viper.SetConfigName("settings")
	viper.SetConfigType("yml")

	viper.SetDefault("session.allowed_durations", []int{5, 10, 15, 20})
	viper.SetDefault("session.retention_hours", 72)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
