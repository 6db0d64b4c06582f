package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// FileSource loads snapshot data from a JSON file on disk.  The file holds a
// single Data document: {"concepts": [...], "relationships": [...]}.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed snapshot source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and decodes the snapshot file.
func (s *FileSource) Load(_ context.Context) (*Data, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoadFailed,
			fmt.Sprintf("cannot read snapshot file %s", s.Path))
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotInvalid,
			fmt.Sprintf("snapshot file %s is not valid JSON", s.Path))
	}
	return &data, nil
}
