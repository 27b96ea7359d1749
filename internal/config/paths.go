package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExecutableDir returns the directory where the current executable resides.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil && strings.TrimSpace(exe) != "" {
		if resolved, resolveErr := filepath.EvalSymlinks(exe); resolveErr == nil && strings.TrimSpace(resolved) != "" {
			exe = resolved
		}
		return filepath.Dir(exe)
	}

	if wd, wdErr := os.Getwd(); wdErr == nil && strings.TrimSpace(wd) != "" {
		return wd
	}
	return "."
}

// ResolveRuntimePath resolves runtime directories (asset store, archive
// staging) against the executable directory when given a relative path.
func ResolveRuntimePath(raw string, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallbackSubdir)
		if target == "" {
			return ExecutableDir()
		}
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(ExecutableDir(), target))
}

// AssetDir resolves the binary asset store root.
func (c *AppConfig) AssetDir() string {
	return ResolveRuntimePath(c.Paths.Assets, "assets")
}

// StagingDir resolves the archive staging directory. Empty means the OS
// temporary directory.
func (c *AppConfig) StagingDir() string {
	if strings.TrimSpace(c.Paths.Staging) == "" {
		return os.TempDir()
	}
	return ResolveRuntimePath(c.Paths.Staging, "")
}
