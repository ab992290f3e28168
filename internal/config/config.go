package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SocketConfig struct {
	URL              string
	HandshakeTimeout time.Duration
}

type CredentialsConfig struct {
	Dir string
}

type DevServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	JWTSecret    string
	JWTTTL       time.Duration
	AdminEmail   string
	AdminPass    string
	RedisAddr    string
	RedisStream  string
}

type AppConfig struct {
	Environment string
	API         APIConfig
	Socket      SocketConfig
	Credentials CredentialsConfig
	DevServer   DevServerConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath(defaultDir())

	v.SetEnvPrefix("PATIENTCALL")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Environment == "production" && cfg.API.BaseURL == devBaseURL {
		return nil, fmt.Errorf("production build requires an explicit api.baseurl")
	}

	// The socket shares the API host unless overridden.
	if cfg.Socket.URL == "" {
		cfg.Socket.URL = cfg.API.BaseURL
	}

	return &cfg, nil
}

const devBaseURL = "http://127.0.0.1:5000"

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.baseurl", devBaseURL)
	v.SetDefault("api.timeout", "10s")

	v.SetDefault("socket.url", "")
	v.SetDefault("socket.handshaketimeout", "10s")

	v.SetDefault("credentials.dir", defaultDir())

	v.SetDefault("devserver.host", "0.0.0.0")
	v.SetDefault("devserver.port", 5000)
	v.SetDefault("devserver.readtimeout", "10s")
	v.SetDefault("devserver.writetimeout", "15s")
	v.SetDefault("devserver.idletimeout", "60s")
	v.SetDefault("devserver.jwtsecret", "dev-only-secret")
	v.SetDefault("devserver.jwtttl", "720h")
	v.SetDefault("devserver.adminemail", "admin@hospital.local")
	v.SetDefault("devserver.adminpass", "admin12345")
	v.SetDefault("devserver.redisaddr", "")
	v.SetDefault("devserver.redisstream", "patientcall:events")
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".patientcall")
}
