package api

// 默认 HTTP API 配置
const (
	defaultHost = "127.0.0.1"
	defaultPort = 8545

	defaultReadTimeoutSec  = 30
	defaultWriteTimeoutSec = 30
)

func createDefaultOptions() *Options {
	return &Options{
		Host:            defaultHost,
		Port:            defaultPort,
		ReadTimeoutSec:  defaultReadTimeoutSec,
		WriteTimeoutSec: defaultWriteTimeoutSec,
	}
}
