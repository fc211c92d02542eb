package memory

// 默认内存缓存配置
const (
	defaultLifeWindow         = "10m"
	defaultCleanWindow        = "5m"
	defaultMaxEntriesInWindow = 10000
	defaultMaxEntrySize       = 1024
)

func createDefaultOptions() *Options {
	return &Options{
		LifeWindow:         defaultLifeWindow,
		CleanWindow:        defaultCleanWindow,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
		MaxEntrySize:       defaultMaxEntrySize,
	}
}
