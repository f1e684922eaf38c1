package config

import (
	"fmt"
	"time"
)

// Backend selects the RemoteStore the client talks to.
type Backend string

const (
	BackendGRPC   Backend = "grpc"
	BackendLocal  Backend = "local"
	BackendNATS   Backend = "nats"
	BackendMemory Backend = "memory"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendGRPC, BackendLocal, BackendNATS, BackendMemory:
		return true
	}
	return false
}

// Config holds runtime settings for the TokenQuest CLI.
//
// Units: OnlineCheckInterval and CallTimeout are time.Duration values.
type Config struct {
	Backend             Backend
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CallTimeout         time.Duration
	// DataDir holds the client database unless DatabasePath is absolute.
	DataDir          string
	DatabasePath     string
	NATSURL          string
	NATSBucketPrefix string
	// CatalogFile overrides the built-in default missions and rewards.
	CatalogFile string
	LogFile     string
	LogLevel    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendGRPC
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CallTimeout = 10 * time.Second
	c.DataDir = ".tokenquest"
	c.DatabasePath = "tokenquest.db"
	c.NATSURL = "nats://127.0.0.1:4222"
	c.NATSBucketPrefix = "tokenquest"
	c.LogFile = "tokenquest.log"
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	if !c.Backend.Valid() {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), TOKENQUEST_* environment variables and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
