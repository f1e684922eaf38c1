package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/flagx"
)

// EnvPrefix prefixes the environment variables read for unset flags,
// e.g. TOKENQUEST_SERVER_D for the DSN.
const EnvPrefix = "TOKENQUEST_SERVER"

// lookupEnv is a test seam for os.LookupEnv.
var lookupEnv = os.LookupEnv

var knownFlags = []string{"-a", "-m", "-d", "-s", "-t", "-r", "-x", "-u", "-p", "-b", "-g", "-e", "-log", "-level"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address ("" disables)
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-x int      backup upload URL validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-log string log file
//	-level string log level
//
// Duration flags are whole minutes.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to expose metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	backupURLValidityDuration := fs.Int("x", int(config.BackupURLValidityDuration.Minutes()), "backup_url_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogFile, "log", config.LogFile, "log file")
	fs.StringVar(&config.LogLevel, "level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	if err := flagx.ApplyEnv(fs, EnvPrefix, lookupEnv); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.BackupURLValidityDuration = time.Duration(*backupURLValidityDuration) * time.Minute
}
