package config

// Application constants
const (
	AppName    = "chartlens"
	AppTitle   = "UK Top 50 Market Analysis"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. CHARTLENS_SERVER_PORT.
	EnvPrefix = "CHARTLENS"

	DefaultPort     = 8501
	DefaultDataPath = "data/Atlantic_United_Kingdom.csv"
)

// Version information, overridden at build time with -ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
