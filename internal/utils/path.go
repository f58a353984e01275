package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates corpus files and the config file relative to the
// executable, the working directory and the platform config dir.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver resolves the running executable and the config directory.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     platformConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// platformConfigDir returns the appropriate config directory for the platform
func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "wordfix")
		}
		return filepath.Join(homeDir, ".config", "wordfix")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wordfix")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "wordfix")
	default:
		return filepath.Join(homeDir, ".config", "wordfix")
	}
}

// ConfigDir returns the platform config directory.
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// ResolveCorpus finds userPath, trying in order:
// 1. the path as given (absolute or relative to the working dir)
// 2. relative to the executable directory
// 3. inside [ConfigDir]/data
// If nothing exists the path is returned unchanged so the loader reports it.
func (pr *PathResolver) ResolveCorpus(userPath string) string {
	candidates := []string{userPath}
	if !filepath.IsAbs(userPath) {
		candidates = append(candidates,
			filepath.Join(pr.executableDir, userPath),
			filepath.Join(pr.configDir, "data", userPath),
		)
	}
	for _, p := range candidates {
		if FileExists(p) {
			log.Debugf("Found corpus at: %s", p)
			return p
		}
		log.Debugf("Corpus candidate not found: %s", p)
	}
	return userPath
}

// GetConfigPath returns the full path for a config file, falling back to
// ~/.wordfix and the temp dir when the config directory is not writable.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	dirs := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, ".wordfix"),
		filepath.Join(os.TempDir(), "wordfix"),
	}
	for i, dir := range dirs {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path, nil
		}
	}
	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}
