// Package config provides functionality for managing configuration options
// for the server and the client using command-line flags, an optional JSON
// config file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Duration is a time.Duration that reads and writes its text form, so the
// same value can come from a flag, a JSON string or an environment
// variable.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address" env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `json:"tls_key" env:"TLS_KEY"`

	// SessionTTL is the lifetime of a login token.
	SessionTTL Duration `json:"session_ttl" env:"SESSION_TTL"`

	// AdminUsername is promoted to admin when it registers.
	AdminUsername string `json:"admin_username" env:"ADMIN_USERNAME"`

	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// OrgUnits seeds the organisational units and their divisions.
	OrgUnits map[string][]string `json:"org_units"`
}

// TLS reports whether the server should listen with TLS.
func (o *Options) TLS() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Parse reads the server configuration from args (without the program
// name). Precedence, lowest first: defaults, flags, config file,
// environment. A .env file in the working directory is loaded into the
// environment first when present.
func Parse(args []string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	fs.TextVar(&options.SessionTTL, "session-ttl", Duration{24 * time.Hour}, "login token lifetime")
	fs.StringVar(&options.AdminUsername, "admin", "", "username promoted to admin on registration")
	fs.Func("cors", "comma-separated allowed origins", func(s string) error {
		options.CORSOrigins = splitList(s)
		return nil
	})
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("error while parsing environment: %w", err)
	}
	// Origins from the file or CORS_ORIGINS are trimmed like the -cors flag.
	options.CORSOrigins = splitList(strings.Join(options.CORSOrigins, ","))
	if options.SessionTTL.Duration <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return options, nil
}

// ClientOptions holds the configuration values for the client shell.
type ClientOptions struct {
	// URL is the backend base URL.
	URL string `env:"CREDKEEPER_URL"`

	// CAFile is an optional extra CA bundle for HTTPS backends.
	CAFile string `env:"CREDKEEPER_CA"`

	LogLevel string `env:"CREDKEEPER_LOG_LEVEL"`

	// ShowVersion prints build metadata and exits.
	ShowVersion bool
}

// ParseClient reads the client configuration from args (without the
// program name); environment variables override flags.
func ParseClient(args []string) (*ClientOptions, error) {
	options := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&options.URL, "url", "http://localhost:8080", "server base URL")
	fs.StringVar(&options.CAFile, "ca", "", "path to CA cert")
	fs.StringVar(&options.LogLevel, "log-level", "warn", "log level")
	fs.BoolVar(&options.ShowVersion, "version", false, "show build version and date")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("error while parsing environment: %w", err)
	}
	options.URL = strings.TrimRight(options.URL, "/")
	return options, nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error while loading .env: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
