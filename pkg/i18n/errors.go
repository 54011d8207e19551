package i18n

import "errors"

// Package errors use descriptive messages for debugging while avoiding implementation details.
// Context cancellation errors are separated to allow proper error handling in timeouts.
var (
	// Templates
	ErrDynamicTemplate = errors.New("dynamic message template cannot be serialized")

	// Dictionary fragments
	ErrInvalidFragment = errors.New("invalid dictionary fragment")
	ErrEmptyLocale     = errors.New("empty locale code")
	ErrNilAdapter      = errors.New("dictionary adapter is nil")

	// JSON operations
	ErrJSONParsingCancelled = errors.New("json parsing cancelled")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON content")

	// YAML operations
	ErrYAMLParsingCancelled = errors.New("yaml parsing cancelled")
	ErrFailedToParseYAML    = errors.New("failed to parse YAML content")

	// File operations
	ErrLoadingFileCancelled = errors.New("loading dictionary file cancelled")
	ErrFailedToReadFile     = errors.New("failed to read dictionary file")
	ErrFailedToParseFile    = errors.New("failed to parse dictionary file")

	// Directory operations
	ErrFailedToAccessDirectory          = errors.New("failed to access directory")
	ErrFailedToReadDirectory            = errors.New("failed to read directory")
	ErrContextCancelledDuringProcessing = errors.New("context canceled while processing directory")

	// fs.FS operations
	ErrLoadingDictionariesCancelled = errors.New("loading dictionaries canceled before starting")
	ErrFailedToReadFSDirectory      = errors.New("failed to read dictionary directory from filesystem")

	// Redis operations
	ErrFailedToReadRedis = errors.New("failed to read dictionaries from redis")

	// Watcher
	ErrWatcherRunning       = errors.New("dictionary watcher already running")
	ErrFailedToStartWatcher = errors.New("failed to start dictionary watcher")
)
