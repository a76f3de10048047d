package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Target    TargetConfig    `mapstructure:"target"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Server    ServerConfig    `mapstructure:"server"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// TargetConfig describes the frontend under verification. The defaults
// reproduce the Pinn dev-server smoke check: open the Vite dev URL, let the
// client render for a fixed interval, then look for the onboarding text.
type TargetConfig struct {
	URL         string        `mapstructure:"url"`
	ProbeText   string        `mapstructure:"probeText"`
	SettleDelay time.Duration `mapstructure:"settleDelay"`
}

type ArtifactsConfig struct {
	Dir        string `mapstructure:"dir"`
	Screenshot string `mapstructure:"screenshot"`
	SaveDOM    bool   `mapstructure:"saveDOM"`
}

type BrowserConfig struct {
	ExecutablePath  string        `mapstructure:"executablePath"`
	Headless        bool          `mapstructure:"headless"`
	UserDataDir     string        `mapstructure:"userDataDir"`
	RunTimeout      time.Duration `mapstructure:"runTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	MaxSessions     int           `mapstructure:"maxSessions"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	ApiKey         string   `mapstructure:"apiKey"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("target.url", "http://localhost:5173")
	v.SetDefault("target.probeText", "Welcome to Pinn")
	v.SetDefault("target.settleDelay", "2s")

	v.SetDefault("artifacts.dir", "verification")
	v.SetDefault("artifacts.screenshot", "initial_load.png")
	v.SetDefault("artifacts.saveDOM", false)

	v.SetDefault("browser.executablePath", "") // Attempt auto-detect if empty
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.userDataDir", "") // Empty means a fresh guest profile
	v.SetDefault("browser.runTimeout", "60s")
	v.SetDefault("browser.shutdownTimeout", "10s")
	v.SetDefault("browser.maxSessions", 4)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "15s")
	v.SetDefault("server.idleTimeout", "60s")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.dir", "verification")

	v.SetDefault("log.level", "info")

	v.SetDefault("security.allowedOrigins", []string{"*"})
	v.SetDefault("security.apiKey", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pinncheck")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pinncheck")
		v.AddConfigPath("/etc/pinncheck")
	}

	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("PINNCHECK")

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
