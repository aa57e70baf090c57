package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	ParseInterval     int
	PostsPerParse     int
	MaxExportRows     int
	APIAccessKey      string

	// Telegram client configuration
	TelegramAPIID   int
	TelegramAPIHash string
	TelegramPhone   string
	SessionFile     string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
