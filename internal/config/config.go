package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	BindHost string `yaml:"bind_host"`
	Port     int    `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
}

type AccessConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Token       string `yaml:"token"`
	Timeout     string `yaml:"timeout"`
	InsecureTLS bool   `yaml:"insecure_tls"`
	DoorName    string `yaml:"door_name"`
	ActorID     string `yaml:"actor_id"`
	ActorName   string `yaml:"actor_name"`
}

type TwilioConfig struct {
	AuthToken     string `yaml:"auth_token"`
	PublicBaseURL string `yaml:"public_base_url"`
	TTSVoice      string `yaml:"tts_voice"`
}

type AllowlistConfig struct {
	Path string `yaml:"path"`
}

type DashboardConfig struct {
	AllowedCIDRs   []string `yaml:"allowed_cidrs"`
	EventRetention int      `yaml:"event_retention"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Access    AccessConfig    `yaml:"access"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	Allowlist AllowlistConfig `yaml:"allowlist"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Store     StoreConfig     `yaml:"store"`
}

// Config is the single explicit configuration value handed to each component
// at startup. Request-handling code never reads the environment.
type Config struct {
	BindHost           string
	Port               string
	GinMode            string
	AccessHost         string
	AccessPort         int
	AccessToken        string
	AccessTimeout      time.Duration
	AccessInsecureTLS  bool
	DoorName           string
	ActorID            string
	ActorName          string
	TwilioAuthToken    string
	PublicBaseURL      string
	TTSVoice           string
	AllowedCallersFile string
	DashboardCIDRs     []string
	EventRetention     int
	StorePath          string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(os.Getenv(k))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// Load reads the YAML config file and applies environment overrides for
// deployment-specific values and secrets.
func Load() (*Config, error) {
	path := env("GATEBRIDGE_CONFIG", "config/config.yml")
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return fromFile(configFile)
}

func fromFile(configFile *ConfigFile) (*Config, error) {
	cfg := &Config{
		BindHost:           env("WEBHOOK_BIND_HOST", defaultStr(configFile.App.BindHost, "127.0.0.1")),
		Port:               env("WEBHOOK_BIND_PORT", strconv.Itoa(defaultInt(configFile.App.Port, 8080))),
		GinMode:            defaultStr(configFile.App.GinMode, "release"),
		AccessHost:         env("UNIFI_HOST", configFile.Access.Host),
		AccessPort:         defaultInt(configFile.Access.Port, 12445),
		AccessToken:        env("UNIFI_ACCESS_API_TOKEN", configFile.Access.Token),
		AccessInsecureTLS:  envBool("UNIFI_INSECURE_TLS", configFile.Access.InsecureTLS),
		DoorName:           defaultStr(configFile.Access.DoorName, "Gate"),
		ActorID:            defaultStr(configFile.Access.ActorID, "phone-gate-bridge"),
		ActorName:          defaultStr(configFile.Access.ActorName, "Phone Gate Bridge"),
		TwilioAuthToken:    env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		PublicBaseURL:      strings.TrimRight(env("PUBLIC_BASE_URL", configFile.Twilio.PublicBaseURL), "/"),
		TTSVoice:           defaultStr(configFile.Twilio.TTSVoice, "Polly.Joanna-Neural"),
		AllowedCallersFile: env("ALLOWED_CALLERS_FILE", defaultStr(configFile.Allowlist.Path, "/etc/phone-gate-bridge/allowed-callers.toml")),
		DashboardCIDRs:     configFile.Dashboard.AllowedCIDRs,
		EventRetention:     defaultInt(configFile.Dashboard.EventRetention, 200),
		StorePath:          env("GATEBRIDGE_STORE_PATH", defaultStr(configFile.Store.Path, "/var/lib/phone-gate-bridge/events.db")),
	}

	timeoutStr := defaultStr(configFile.Access.Timeout, "5s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access timeout: %w", err)
	}
	cfg.AccessTimeout = timeout

	if cfg.AccessHost == "" {
		return nil, fmt.Errorf("access host is required (UNIFI_HOST or access.host)")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required (UNIFI_ACCESS_API_TOKEN or access.token)")
	}
	if cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("twilio auth token is required (TWILIO_AUTH_TOKEN or twilio.auth_token)")
	}
	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("public base URL is required (PUBLIC_BASE_URL or twilio.public_base_url)")
	}

	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func defaultStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func defaultInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
