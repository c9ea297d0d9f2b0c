package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	WebRTC   WebRTCConfig   `yaml:"webrtc"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN" env-default:""`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:""`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
}

type WebRTCConfig struct {
	STUNServers    []string `yaml:"stun_servers" env:"STUN_SERVERS" env-default:""`
	TURNServers    []string `yaml:"turn_servers" env:"TURN_SERVERS" env-default:""`
	TURNUsername   string   `yaml:"turn_username" env:"TURN_USERNAME" env-default:""`
	TURNCredential string   `yaml:"turn_credential" env:"TURN_CREDENTIAL" env-default:""`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.WebRTC.STUNServers) == 0 {
		c.WebRTC.STUNServers = []string{"stun:stun.l.google.com:19302"}
	}
}
