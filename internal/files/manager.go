package files

import (
	"log/slog"
	"os"
	"path/filepath"

	apperrors "inscompare/internal/errors"
)

// stagedFile pairs a temporary file with the destination it replaces
type stagedFile struct {
	temp string
	dest string
}

// Manager stages output files beside their destinations and moves them into
// place together. It is not safe for concurrent use.
type Manager struct {
	logger  *slog.Logger
	pending []stagedFile
}

// NewManager creates a file manager; a nil logger means slog.Default()
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Create opens a temporary file in the directory of path, creating the
// directory if needed. The caller writes and closes the file; Commit moves
// it onto path.
func (m *Manager) Create(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create output directory", err).
			WithContext("path", dir)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create output file", err).
			WithContext("path", path)
	}
	// CreateTemp uses 0600; outputs are shared like any report file
	if err := file.Chmod(0644); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, apperrors.NewStorageError("failed to create output file", err).
			WithContext("path", path)
	}

	m.pending = append(m.pending, stagedFile{temp: file.Name(), dest: path})
	m.logger.Debug("Staged output file",
		slog.String("path", path),
		slog.String("temp_path", file.Name()))
	return file, nil
}

// Pending returns the destinations staged since the last Commit or Discard
func (m *Manager) Pending() []string {
	paths := make([]string, len(m.pending))
	for i, s := range m.pending {
		paths[i] = s.dest
	}
	return paths
}

// Commit renames every staged file onto its destination in staging order.
// If a rename fails, the files not yet moved are removed.
func (m *Manager) Commit() error {
	pending := m.pending
	m.pending = nil

	for i, s := range pending {
		if err := os.Rename(s.temp, s.dest); err != nil {
			removeStaged(m.logger, pending[i:])
			return apperrors.NewStorageError("failed to move output file into place", err).
				WithContext("path", s.dest)
		}
		m.logger.Info("Committed output file", slog.String("path", s.dest))
	}
	return nil
}

// Discard removes every staged file. It is a no-op after Commit.
func (m *Manager) Discard() {
	if len(m.pending) == 0 {
		return
	}
	m.logger.Warn("Discarding staged output files", slog.Int("count", len(m.pending)))
	removeStaged(m.logger, m.pending)
	m.pending = nil
}

func removeStaged(logger *slog.Logger, staged []stagedFile) {
	for _, s := range staged {
		if err := os.Remove(s.temp); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove staged file",
				slog.String("path", s.temp),
				slog.String("error", err.Error()))
		}
	}
}
