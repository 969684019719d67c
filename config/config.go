package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default endpoint: the Dataforsyningen archive speaks implicit-TLS FTP on a
// non-default port.
const (
	DefaultFTPHost     = "ftp.dataforsyningen.dk"
	DefaultFTPPort     = 990
	DefaultDialTimeout = 30 * time.Second
)

// Config holds the runtime settings for the tool. Credentials given here are
// only defaults; command flags override them and nothing is ever written back.
type Config struct {
	FTPHost     string        // FTPS endpoint hostname
	FTPPort     int           // FTPS endpoint port
	DialTimeout time.Duration // connect timeout
	Username    string        // default FTP username (create at https://dataforsyningen.dk/)
	Password    string        // default FTP password
	LogFile     string        // optional rotating log file path
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: .env file could not be loaded: %v", err)
		}
	}

	cfg := &Config{
		FTPHost:     DefaultFTPHost,
		FTPPort:     DefaultFTPPort,
		DialTimeout: DefaultDialTimeout,
		Username:    os.Getenv("DFSFETCH_USERNAME"),
		Password:    os.Getenv("DFSFETCH_PASSWORD"),
		LogFile:     os.Getenv("DFSFETCH_LOG_FILE"),
	}

	if host := os.Getenv("DFSFETCH_FTP_HOST"); host != "" {
		cfg.FTPHost = host
	}
	if port := os.Getenv("DFSFETCH_FTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid DFSFETCH_FTP_PORT %q: %w", port, err)
		}
		cfg.FTPPort = p
	}
	if timeout := os.Getenv("DFSFETCH_DIAL_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid DFSFETCH_DIAL_TIMEOUT %q: %w", timeout, err)
		}
		cfg.DialTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs sanity checks on the loaded configuration.
func (c *Config) Validate() error {
	if c.FTPHost == "" {
		return fmt.Errorf("FTP host cannot be empty")
	}
	if c.FTPPort <= 0 || c.FTPPort > 65535 {
		return fmt.Errorf("FTP port must be in 1-65535, got %d", c.FTPPort)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive, got %v", c.DialTimeout)
	}
	return nil
}
