// Package config loads chartlens configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command line flags (host, port, data path; applied by the caller)
//	2. Environment variables, including those from an optional .env file
//	3. An optional config.yaml
//	4. Default values
//
// # Environment Variables
//
// All environment variables use the CHARTLENS_ prefix:
//
//	CHARTLENS_SERVER_HOST=0.0.0.0
//	CHARTLENS_SERVER_PORT=8501
//	CHARTLENS_DATA_PATH=data/Atlantic_United_Kingdom.csv
//	CHARTLENS_LOGGING_LEVEL=debug
//	CHARTLENS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests can start from config.Default(), which needs no environment.
package config
