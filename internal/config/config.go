package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel      string        `yaml:"log-level" env-default:"info"`
	ServerName    string        `yaml:"server-name" env-default:"Tic Tac Toe Server"`
	TCPPort       string        `yaml:"tcp-port" env-default:"5567"`
	MaxClients    int           `yaml:"max-clients" env-default:"100"`
	StatsInterval time.Duration `yaml:"stats-interval" env-default:"60s"`
	Redis         Redis         `yaml:"redis"`
}

// Redis points at the optional finished-game archive. Leaving the host empty
// disables archiving.
type Redis struct {
	Host string `yaml:"host" env-default:""`
	Port string `yaml:"port" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
