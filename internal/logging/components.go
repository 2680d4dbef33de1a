package logging

// Component constants for structured logging
const (
	ComponentStartup  = "startup"
	ComponentShutdown = "shutdown"
	ComponentDatabase = "database"
	ComponentSessions = "sessions"
	ComponentPipeline = "pipeline"
	ComponentResults  = "results"
	ComponentExport   = "export"
	ComponentCleanup  = "cleanup"
	ComponentUpload   = "upload"
)
