package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sha1n/eml-vocab/internal/domain"
)

const (
	// SchemaVersion is the current artifact schema version.
	SchemaVersion = 1

	// DefaultExtension is appended to artifact paths given without one.
	DefaultExtension = ".json"
)

// ErrIncompatibleSchema indicates an artifact written with another schema version.
var ErrIncompatibleSchema = errors.New("incompatible artifact schema version")

// ArtifactError reports an artifact that could not be written or read.
type ArtifactError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// envelope is the on-disk form of an artifact. Unknown fields are ignored on
// load so optional metadata can be added without breaking older readers.
type envelope struct {
	SchemaVersion int                `json:"schema_version"`
	RunMetadata   domain.RunMetadata `json:"run_metadata"`
	TagStatistics []domain.TagStats  `json:"tag_statistics"`
}

// header is decoded when only the run metadata is needed.
type header struct {
	SchemaVersion int                `json:"schema_version"`
	RunMetadata   domain.RunMetadata `json:"run_metadata"`
}

// Path returns p with DefaultExtension appended if it has no extension.
func Path(p string) string {
	if filepath.Ext(p) == "" {
		return p + DefaultExtension
	}
	return p
}

// Save writes stats to path atomically: the artifact is written to a temporary
// file in the same directory and renamed into place, so readers never see a
// partial artifact and an existing artifact survives a failed save.
func Save(stats *domain.CorpusStats, path string) error {
	if stats == nil {
		return &ArtifactError{Op: "save", Path: path, Err: errors.New("nil statistics")}
	}
	tags := stats.Tags
	if tags == nil {
		tags = []domain.TagStats{}
	}
	data, err := json.MarshalIndent(envelope{
		SchemaVersion: SchemaVersion,
		RunMetadata:   stats.Metadata,
		TagStatistics: tags,
	}, "", "  ")
	if err != nil {
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to marshal: %w", err)}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to write temp file: %w", err)}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to sync temp file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to close temp file: %w", err)}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to set permissions: %w", err)}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return &ArtifactError{Op: "save", Path: path, Err: fmt.Errorf("failed to rename artifact: %w", err)}
	}
	return nil
}

// Load reads an artifact written by Save.
func Load(path string) (*domain.CorpusStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactError{Op: "load", Path: path, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ArtifactError{Op: "load", Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, &ArtifactError{
			Op:   "load",
			Path: path,
			Err:  fmt.Errorf("%w: got %d, want %d", ErrIncompatibleSchema, env.SchemaVersion, SchemaVersion),
		}
	}
	if env.TagStatistics == nil {
		env.TagStatistics = []domain.TagStats{}
	}

	return &domain.CorpusStats{
		Metadata: env.RunMetadata,
		Tags:     env.TagStatistics,
	}, nil
}

// LoadMetadata reads only the run metadata of an artifact.
func LoadMetadata(path string) (*domain.RunMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ArtifactError{Op: "load", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	var h header
	if err := json.NewDecoder(f).Decode(&h); err != nil {
		return nil, &ArtifactError{Op: "load", Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}
	if h.SchemaVersion != SchemaVersion {
		return nil, &ArtifactError{
			Op:   "load",
			Path: path,
			Err:  fmt.Errorf("%w: got %d, want %d", ErrIncompatibleSchema, h.SchemaVersion, SchemaVersion),
		}
	}
	return &h.RunMetadata, nil
}
