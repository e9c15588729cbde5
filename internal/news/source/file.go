// Package source provides news.Source implementations that do not need the
// game backend.
package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zappabad/stocky/internal/news"
)

// File reads records from a YAML list on disk. The file is re-read on every
// fetch so fixtures can be edited between sessions.
type File struct {
	path string
}

// NewFile creates a File source for path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) FetchNewsList(ctx context.Context) ([]news.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading news file: %w", err)
	}
	var records []news.Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing news file %s: %w", f.path, err)
	}
	return records, nil
}
