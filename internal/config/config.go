// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON file, a local .env
// file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultAddress        = "localhost:8080"
	DefaultStorageFile    = "portal-storage.json"
	DefaultSessionTimeout = 15 * time.Minute
	DefaultLoginDelay     = time.Second
	DefaultSignupDelay    = 1500 * time.Millisecond
	DefaultClientIdle     = time.Hour
	DefaultLogLevel       = "info"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// DatabaseDSN holds the database connection string. When empty the
	// accounts and sessions live in StorageFile.
	DatabaseDSN string `json:"database_dsn"`

	// StorageFile is the JSON file backing storage when no database is used.
	StorageFile string `json:"storage_file"`

	// SessionTimeout is the session lifetime after login or keep-alive.
	SessionTimeout Duration `json:"session_timeout"`

	// LoginDelay and SignupDelay simulate request latency.
	LoginDelay  Duration `json:"login_delay"`
	SignupDelay Duration `json:"signup_delay"`

	// ClientIdle is how long an idle client's wizard draft is kept.
	ClientIdle Duration `json:"client_idle"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// Default returns options with every default applied.
func Default() *Options {
	return &Options{
		Address:        DefaultAddress,
		StorageFile:    DefaultStorageFile,
		SessionTimeout: Duration(DefaultSessionTimeout),
		LoginDelay:     Duration(DefaultLoginDelay),
		SignupDelay:    Duration(DefaultSignupDelay),
		ClientIdle:     Duration(DefaultClientIdle),
		LogLevel:       DefaultLogLevel,
		Config:         "config.json",
	}
}

// Parse reads the process flags, the config file, a .env file in the
// working directory and the environment. Precedence, lowest first: defaults,
// config file, flags, environment.
func Parse() (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(flag.CommandLine, os.Args[1:], os.Getenv)
}

func parse(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	options := Default()

	// First pass only locates the config file.
	flagged := Default()
	register(fs, flagged)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.Config = flagged.Config
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Explicitly set flags override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			options.Address = flagged.Address
		case "d":
			options.DatabaseDSN = flagged.DatabaseDSN
		case "f":
			options.StorageFile = flagged.StorageFile
		case "t":
			options.SessionTimeout = flagged.SessionTimeout
		case "l":
			options.LogLevel = flagged.LogLevel
		case "tls-cert":
			options.TLSCert = flagged.TLSCert
		case "tls-key":
			options.TLSKey = flagged.TLSKey
		}
	})

	if err := applyEnv(options, getenv); err != nil {
		return nil, err
	}
	return options, nil
}

func register(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.Address, "a", o.Address, "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "db address")
	fs.StringVar(&o.StorageFile, "f", o.StorageFile, "storage file used when no db address is set")
	fs.Var(&o.SessionTimeout, "t", "session timeout, e.g. 15m")
	fs.StringVar(&o.LogLevel, "l", o.LogLevel, "log level")
	fs.StringVar(&o.TLSCert, "tls-cert", o.TLSCert, "TLS certificate file")
	fs.StringVar(&o.TLSKey, "tls-key", o.TLSKey, "TLS key file")
	fs.StringVar(&o.Config, "config", o.Config, "path to config file")
	fs.StringVar(&o.Config, "c", o.Config, "path to config file (shorthand)")
}

func applyEnv(o *Options, getenv func(string) string) error {
	if v := getenv("SERVER_ADDRESS"); v != "" {
		o.Address = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := getenv("STORAGE_FILE"); v != "" {
		o.StorageFile = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	if v := getenv("SESSION_TIMEOUT"); v != "" {
		if err := o.SessionTimeout.Set(v); err != nil {
			return fmt.Errorf("SESSION_TIMEOUT: %w", err)
		}
	}
	return nil
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
