package badger

import "github.com/membria/v1/pkg/utils"

// 默认 BadgerDB 配置
const (
	defaultSyncWrites   = true
	defaultMemTableSize = 64 << 20 // 64MB
)

func getDefaultPath() string {
	return utils.ResolveDataPath("./data/badger")
}

func createDefaultOptions() *Options {
	return &Options{
		Path:         getDefaultPath(),
		SyncWrites:   defaultSyncWrites,
		MemTableSize: defaultMemTableSize,
	}
}
