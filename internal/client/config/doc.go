// Package config loads runtime configuration for the TokenQuest CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. TOKENQUEST_<FLAG> environment variables, for flags not given explicitly.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "backend": "grpc",
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "call_timeout": "10s",
//	  "database_path": "tokenquest.db",
//	  "nats_url": "nats://127.0.0.1:4222"
//	}
package config
