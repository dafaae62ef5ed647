// Package config loads the environment-variable configuration of
// spec.md §6 using a fresh viper instance per load call, following the
// AutomaticEnv + Unmarshal pattern of the pack's
// btcq-org-qbtc/bifrost/config/config.go and bitcoin/config.go. Unlike
// those callers, an instance-scoped viper.New() is used rather than the
// global viper singleton, since a single process may need to load both
// a ServerConfig and a ClientConfig without one clobbering the other's
// bound keys.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig is the server process's required environment, per
// spec.md §6.
type ServerConfig struct {
	ServerHostname string `mapstructure:"SERVER_HOSTNAME"`
	Port           int    `mapstructure:"PORT"`

	SelfSignedCertPath string `mapstructure:"SERVER_SELF_SIGNED_CERT_PATH"`
	PrivateKeyPath     string `mapstructure:"SERVER_PRIVATE_KEY_PATH"`
	LogfilePath        string `mapstructure:"SERVER_LOGFILE_PATH"`

	TheQuestion     string `mapstructure:"THE_QUESTION"`
	NumParticipants int    `mapstructure:"NUM_PARTICIPANTS"`
}

// ClientConfig is the client process's required environment.
type ClientConfig struct {
	ServerHostname string `mapstructure:"SERVER_HOSTNAME"`
	Port           int    `mapstructure:"PORT"`

	SelfSignedCertPath string `mapstructure:"CLIENT_SELF_SIGNED_CERT_PATH"`
	LogfilePath        string `mapstructure:"CLIENT_LOGFILE_PATH"`

	ParticipantsNumber int `mapstructure:"PARTICIPANTS_NUMBER"`
}

var serverKeys = []string{
	"SERVER_HOSTNAME", "PORT",
	"SERVER_SELF_SIGNED_CERT_PATH", "SERVER_PRIVATE_KEY_PATH", "SERVER_LOGFILE_PATH",
	"THE_QUESTION", "NUM_PARTICIPANTS",
}

var clientKeys = []string{
	"SERVER_HOSTNAME", "PORT",
	"CLIENT_SELF_SIGNED_CERT_PATH", "CLIENT_LOGFILE_PATH",
	"PARTICIPANTS_NUMBER",
}

func newViper(keys []string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", k, err)
		}
	}
	return v, nil
}

// LoadServerConfig reads and validates the server's required
// environment variables.
func LoadServerConfig() (*ServerConfig, error) {
	v, err := newViper(serverKeys)
	if err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal server config: %w", err)
	}

	if err := requireNonEmpty(v, "SERVER_HOSTNAME", "PORT",
		"SERVER_SELF_SIGNED_CERT_PATH", "SERVER_PRIVATE_KEY_PATH",
		"SERVER_LOGFILE_PATH", "THE_QUESTION", "NUM_PARTICIPANTS"); err != nil {
		return nil, err
	}
	if cfg.NumParticipants < 2 {
		return nil, fmt.Errorf("config: NUM_PARTICIPANTS must be >= 2, got %d", cfg.NumParticipants)
	}

	return &cfg, nil
}

// LoadClientConfig reads and validates the client's required
// environment variables.
func LoadClientConfig() (*ClientConfig, error) {
	v, err := newViper(clientKeys)
	if err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal client config: %w", err)
	}

	if err := requireNonEmpty(v, "SERVER_HOSTNAME", "PORT",
		"CLIENT_SELF_SIGNED_CERT_PATH", "CLIENT_LOGFILE_PATH", "PARTICIPANTS_NUMBER"); err != nil {
		return nil, err
	}
	if cfg.ParticipantsNumber < 2 {
		return nil, fmt.Errorf("config: PARTICIPANTS_NUMBER must be >= 2, got %d", cfg.ParticipantsNumber)
	}

	return &cfg, nil
}

func requireNonEmpty(v *viper.Viper, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if v.Get(k) == nil || v.GetString(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
