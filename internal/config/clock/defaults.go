package clock

// 默认时钟配置
const defaultSource = "system"

var defaultNTPServers = []string{"pool.ntp.org", "time.cloudflare.com"}

func createDefaultOptions() *Options {
	servers := make([]string, len(defaultNTPServers))
	copy(servers, defaultNTPServers)
	return &Options{
		Source:     defaultSource,
		NTPServers: servers,
	}
}
