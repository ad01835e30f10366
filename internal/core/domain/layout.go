package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// CacheDirName is the name of the default cache root directory.
	CacheDirName = ".depcache"

	// GenerationPrefix prefixes every generation directory inside the cache root.
	GenerationPrefix = "gen-"

	// CacheFileName is the name of the persisted cache file inside a generation.
	CacheFileName = "cache.bin"

	// ConfigFileName is the name of the YAML project configuration file.
	ConfigFileName = "depcache.yaml"

	// ConfigTOMLFileName is the name of the TOML project configuration file.
	ConfigTOMLFileName = "depcache.toml"

	// ClassFileExt is the extension of compiled class files.
	ClassFileExt = ".class"

	// ObjectClassName is the internal name of the root of the class hierarchy.
	ObjectClassName = "java/lang/Object"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default root directory for persisted generations.
func DefaultCachePath() string {
	return CacheDirName
}

// GenerationDirName returns the directory name of generation n, e.g. gen-000003.
func GenerationDirName(n uint32) string {
	return fmt.Sprintf("%s%06d", GenerationPrefix, n)
}

// GenerationCachePath returns the cache file path of generation n under root.
// It joins root, gen-NNNNNN, and cache.bin.
func GenerationCachePath(root string, n uint32) string {
	return filepath.Join(root, GenerationDirName(n), CacheFileName)
}

// ResolvePath joins a relative path onto root. Absolute and empty paths are returned unchanged.
func ResolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// InternalName converts a binary class name such as com.acme.Foo to its
// internal form com/acme/Foo. Internal names are returned unchanged.
func InternalName(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, ClassFileExt), ".", "/")
}
