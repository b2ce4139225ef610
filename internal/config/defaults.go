package config

import "runtime"

const (
	defaultConfigPath       = "~/.config/addsubs/config.toml"
	projectConfigName       = "addsubs.toml"
	defaultMuxTool          = "mkvmerge"
	defaultOutputDirName    = "output"
	defaultMaxCommandLength = 4096
	defaultSyncTool         = "ffs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultHistoryPath      = "~/.local/share/addsubs/history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Mux: Mux{
			Tool:             defaultMuxTool,
			OutputDirName:    defaultOutputDirName,
			MaxCommandLength: defaultMaxCommandLength,
		},
		Sync: Sync{
			Tool: defaultSyncTool,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}

// Workers returns the effective job concurrency. Zero or negative configured
// values fall back to the number of available CPUs.
func (c *Config) Workers() int {
	if c == nil || c.Mux.Concurrency <= 0 {
		return max(runtime.NumCPU(), 1)
	}
	return c.Mux.Concurrency
}
