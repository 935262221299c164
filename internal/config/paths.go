package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved absolute directories the pipeline works
// with. This is the single source of truth for file placement: raw input
// files are read from RawDir, processed output lands in ProcessedDir and
// log files in LogsDir.
type Paths struct {
	RawDir       string
	ProcessedDir string
	LogsDir      string
}

// ResolvePaths resolves the configured directories against the current
// working directory, leaving absolute paths untouched.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	resolve := func(dir string) (string, error) {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir), nil
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve directory %s: %w", dir, err)
		}
		return abs, nil
	}

	rawDir, err := resolve(cfg.RawDir)
	if err != nil {
		return nil, err
	}
	processedDir, err := resolve(cfg.ProcessedDir)
	if err != nil {
		return nil, err
	}
	logsDir, err := resolve(cfg.LogsDir)
	if err != nil {
		return nil, err
	}

	return &Paths{
		RawDir:       rawDir,
		ProcessedDir: processedDir,
		LogsDir:      logsDir,
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.RawDir,
		p.ProcessedDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// RawFilePath returns the path of a raw input file
func (p *Paths) RawFilePath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// ProcessedFilePath returns the path of a processed output file
func (p *Paths) ProcessedFilePath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// LogFilePath returns the path of a log file
func (p *Paths) LogFilePath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
