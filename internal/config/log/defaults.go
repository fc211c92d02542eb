package log

// 默认日志配置
const (
	defaultLevel      = "info"
	defaultOutputPath = ""
	defaultConsole    = true

	defaultMaxSizeMB  = 100
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

func createDefaultOptions() *Options {
	return &Options{
		Level:      defaultLevel,
		OutputPath: defaultOutputPath,
		Console:    defaultConsole,
		MaxSizeMB:  defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAgeDays: defaultMaxAgeDays,
	}
}
