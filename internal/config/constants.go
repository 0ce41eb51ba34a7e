package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./soundwave.db"

	// DefaultMediaDir is where uploaded images and audio land with the local provider
	DefaultMediaDir = "./media"

	// DefaultRecountReportDir holds archived reconciliation reports
	DefaultRecountReportDir = "./recount-reports"
)
