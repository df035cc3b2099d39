// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// Precedence, lowest to highest: config.yml, .env, real environment.
// Environment keys are matched against nested config keys by replacing "_"
// with ".", so SSE_HEARTBEAT_INTERVAL may set sse.heartbeat_interval.
//
// # Usage
//
//	var cfg AppConfig
//	if err := config.LoadConfig("eventstream", &cfg); err != nil {
//	    return err
//	}
package config
