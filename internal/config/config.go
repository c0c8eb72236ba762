package config

import (
	"fmt"
	"net"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"7777"`
	Redis      Redis     `yaml:"redis"`
	Results    Results   `yaml:"results"`
	Websocket  Websocket `yaml:"websocket"`
}

// Redis backs the result log. When disabled, finished matches are only logged.
type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Results struct {
	Limit int `yaml:"limit" env:"RESULTS_LIMIT" env-default:"100"`
}

type Websocket struct {
	// AllowedOrigins of "*" or an empty list accepts any origin.
	AllowedOrigins []string `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS" env-separator:","`
	Rate           float64  `yaml:"rate" env:"WS_RATE" env-default:"1"`
	Burst          int      `yaml:"burst" env:"WS_BURST" env-default:"5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

func (that *Websocket) AnyOrigin() bool {
	if len(that.AllowedOrigins) == 0 {
		return true
	}

	for _, origin := range that.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}

	return false
}
