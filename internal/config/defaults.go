package config

const (
	defaultStagingDir      = "~/.local/share/gavel/staging"
	defaultLogDir          = "~/.local/share/gavel/logs"
	defaultAPIBind         = "127.0.0.1:7519"
	defaultStorageBackend  = "s3"
	defaultStorageRegion   = "us-east-1"
	defaultModel           = "large-v3"
	defaultLanguage        = "en"
	defaultChunkMinutes    = 10.0
	defaultMinChunkSeconds = 30.0
	defaultWorkers         = 4
	defaultExtraction      = "reencode"
	defaultJobStore        = "memory"
	defaultMaxActiveJobs   = 2
	defaultJobQueueDepth   = 16
	defaultStaleAfterHours = 24
	defaultLogFormat       = ""
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
			Region:  defaultStorageRegion,
		},
		Transcribe: Transcribe{
			Model:           defaultModel,
			Language:        defaultLanguage,
			ChunkMinutes:    defaultChunkMinutes,
			MinChunkSeconds: defaultMinChunkSeconds,
			Workers:         defaultWorkers,
			Extraction:      defaultExtraction,
		},
		Jobs: Jobs{
			Store:      defaultJobStore,
			MaxActive:  defaultMaxActiveJobs,
			QueueDepth: defaultJobQueueDepth,
		},
		Workspace: Workspace{
			StaleAfterHours: defaultStaleAfterHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
