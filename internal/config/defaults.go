package config

const (
	defaultDataDir       = "~/.local/share/fieldinspect"
	defaultLogDir        = "~/.local/share/fieldinspect/logs"
	defaultAPIBind       = "127.0.0.1:7590"
	defaultDatabaseFile  = "inspections.db"
	defaultBusyTimeoutMS = 5000
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Storage: Storage{
			DatabaseFile:  defaultDatabaseFile,
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
