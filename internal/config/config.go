package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	BaseURL     string `mapstructure:"BASE_URL"` // Overrides request-derived short URL base when set
}

func LoadConfig() (config Config, err error) {
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("PORT", "8001")
	viper.SetDefault("DATABASE_URL", "sqlite://shortlink.db")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	// Registered with an empty default so AutomaticEnv picks it up;
	// unset means "derive the base from the request".
	viper.SetDefault("BASE_URL", "")

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	return
}
