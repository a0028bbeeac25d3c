package config

const (
	// MaxProjectNameLength is the maximum length for project names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxProjectNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength = 255

	// MaxRequestNameLength is the maximum length for request names.
	MaxRequestNameLength = 255

	// MaxURLLength bounds stored request URLs.
	MaxURLLength = 8192

	// MaxEnvironmentNameLength is the maximum length for environment names.
	MaxEnvironmentNameLength = 255

	// DefaultHistoryMaxEntries is how many executions are kept per request.
	DefaultHistoryMaxEntries = 50

	// DefaultHistoryMaxBodyBytes truncates response bodies stored in history.
	DefaultHistoryMaxBodyBytes = 1 << 20

	// DefaultHistoryLimit is the page size when a caller does not pass one.
	DefaultHistoryLimit = 20

	// MaxImportDocumentBytes bounds uploaded collection documents.
	MaxImportDocumentBytes = 20 << 20

	// ShareIDLength is the length of generated share tokens.
	ShareIDLength = 8
)
