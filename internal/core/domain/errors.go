package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownSymbol is returned when a symbol id was never interned in the current generation.
	ErrUnknownSymbol = zerr.New("unknown symbol")

	// ErrCacheCorrupted is returned when the persisted or in-memory cache is structurally inconsistent.
	// The only recovery is to discard the cache and rebuild it from a full compilation.
	ErrCacheCorrupted = zerr.New("dependency cache corrupted")

	// ErrMalformedDescriptor is returned when a type or method descriptor cannot be decoded.
	ErrMalformedDescriptor = zerr.New("malformed descriptor")

	// ErrClassNotFound is returned when a class is not present in the dependency cache.
	ErrClassNotFound = zerr.New("class not found")

	// ErrInvalidClassFile is returned when compiled class bytes cannot be parsed.
	ErrInvalidClassFile = zerr.New("invalid class file")

	// ErrClassNameMismatch is returned when the class file declares a different name than the driver reported.
	ErrClassNameMismatch = zerr.New("class name does not match class file")

	// ErrDuplicateClass is returned when a build pass contains the same class twice.
	ErrDuplicateClass = zerr.New("duplicate class in build pass")

	// ErrStalePass is returned when a build pass id does not increase monotonically.
	ErrStalePass = zerr.New("build pass id must increase monotonically")

	// ErrPassClosed is returned when a pending pass is committed or abandoned twice.
	ErrPassClosed = zerr.New("build pass already closed")

	// ErrPassBudgetExhausted is returned when the driver exceeds the configured number of passes.
	ErrPassBudgetExhausted = zerr.New("build pass budget exhausted")

	// ErrCommitFailed is returned when a pending pass cannot be committed.
	ErrCommitFailed = zerr.New("failed to commit build pass")

	// ErrStoreCreateFailed is returned when the cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache directory")

	// ErrStoreReadFailed is returned when the persisted cache cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read persisted cache")

	// ErrStoreWriteFailed is returned when the persisted cache cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write persisted cache")

	// ErrStoreDiscardFailed is returned when the persisted cache cannot be removed.
	ErrStoreDiscardFailed = zerr.New("failed to discard persisted cache")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidBackend is returned when the configured compiler backend is not supported.
	ErrInvalidBackend = zerr.New("invalid backend, expected 'javac' or 'ecj'")

	// ErrInvalidConstantPolicy is returned when the configured constant policy is not supported.
	ErrInvalidConstantPolicy = zerr.New("invalid constant policy, expected 'javac' or 'none'")

	// ErrInvalidWorkers is returned when the configured worker count is not positive.
	ErrInvalidWorkers = zerr.New("workers must be greater than zero")

	// ErrInvalidExcludePattern is returned when an exclude glob cannot be compiled.
	ErrInvalidExcludePattern = zerr.New("invalid exclude pattern")

	// ErrClassDirNotFound is returned when the compiled classes directory does not exist.
	ErrClassDirNotFound = zerr.New("classes directory not found")

	// ErrClassReadFailed is returned when a class file cannot be read from disk.
	ErrClassReadFailed = zerr.New("failed to read class file")

	// ErrRefsReadFailed is returned when the references manifest cannot be read or parsed.
	ErrRefsReadFailed = zerr.New("failed to read references manifest")

	// ErrInvalidFormat is returned when an unknown report format is requested.
	ErrInvalidFormat = zerr.New("invalid format, expected 'auto', 'text' or 'json'")

	// ErrWatchFailed is returned when the classes directory cannot be watched.
	ErrWatchFailed = zerr.New("failed to watch classes directory")

	// ErrInvalidKind is returned when a change or reason kind cannot be decoded.
	ErrInvalidKind = zerr.New("invalid change or reason kind")

	// ErrPassFailed is returned when a build pass could not be computed.
	ErrPassFailed = zerr.New("build pass failed")
)
