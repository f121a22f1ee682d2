package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/shop-it-api/shared/security"
)

// AuthServiceConfig holds the runtime settings of the auth service.
type AuthServiceConfig struct {
	Environment string `env:"APP_ENV"     envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"   envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR"   envDefault:":8080"`
	APIVersion  string `env:"API_VERSION" envDefault:"v1"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	Mongo  MongoConfig           `envPrefix:"MONGO_"`
	Token  TokenConfig           `envPrefix:"JWT_"`
	OTP    OTPConfig             `envPrefix:"OTP_"`
	Argon2 security.Argon2Params
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI            string        `env:"URI"             envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"DATABASE"        envDefault:"shop_it"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// TokenConfig holds signing keys and lifetimes. Access and refresh tokens are
// signed with distinct secrets.
type TokenConfig struct {
	Issuer                string        `env:"ISSUER"             envDefault:"shop-it"`
	Audience              string        `env:"AUDIENCE"           envDefault:"shop-it-api"`
	AccessTokenSecret     string        `env:"ACCESS_SECRET"`
	RefreshTokenSecret    string        `env:"REFRESH_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_EXPIRES_IN"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_EXPIRES_IN" envDefault:"168h"`
}

// OTPConfig holds one-time code settings.
type OTPConfig struct {
	ExpiresIn time.Duration `env:"EXPIRES_IN" envDefault:"10m"`
}

// Load parses the configuration from the environment and validates it.
func Load() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *AuthServiceConfig) Validate() error {
	if c.Token.AccessTokenSecret == "" {
		return errors.New("missing JWT_ACCESS_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return errors.New("missing JWT_REFRESH_SECRET environment variable")
	}
	if c.Token.AccessTokenSecret == c.Token.RefreshTokenSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.Token.AccessTokenExpiresIn <= 0 || c.Token.RefreshTokenExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.OTP.ExpiresIn <= 0 {
		return errors.New("OTP_EXPIRES_IN must be positive")
	}

	return nil
}
