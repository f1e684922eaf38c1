package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/flagx"
)

// EnvPrefix prefixes the environment variables read for unset flags,
// e.g. TOKENQUEST_BACKEND.
const EnvPrefix = "TOKENQUEST"

// lookupEnv is a test seam for os.LookupEnv.
var lookupEnv = os.LookupEnv

var knownFlags = []string{"-a", "-i", "-backend", "-db", "-data", "-nats", "-timeout", "-catalog", "-log", "-level"}

// parseFlags populates Config fields from command-line flags, then fills
// flags not given explicitly from the environment.
//
// Supported flags:
//
//	-a string        address and port of the backend server
//	-i int           online check interval in seconds
//	-backend string  grpc, local, nats or memory
//	-db string       client database file
//	-data string     directory for the client database
//	-nats string     NATS server URL
//	-timeout int     per-call timeout in seconds
//	-catalog string  YAML file with default missions and rewards
//	-log string      log file ("" logs to stderr)
//	-level string    log level
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	backend := fs.String("backend", string(cfg.Backend), "remote store backend: grpc, local, nats or memory")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "client database file")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory for the client database")
	fs.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS server URL")
	callTimeout := fs.Int("timeout", int(cfg.CallTimeout.Seconds()), "per-call timeout (in seconds)")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "YAML file with default missions and rewards")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file")
	fs.StringVar(&cfg.LogLevel, "level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	if err := flagx.ApplyEnv(fs, EnvPrefix, lookupEnv); err != nil {
		panic(err)
	}

	cfg.Backend = Backend(*backend)
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.CallTimeout = time.Duration(*callTimeout) * time.Second
}
