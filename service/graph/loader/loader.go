// Package loader reads solution graph definitions from YAML documents
// stored in any afs supported location.
package loader

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/kgflow/internal/env"
	"github.com/viant/kgflow/service/construction"
	"gopkg.in/yaml.v3"
)

// Service represents definition loader
type Service struct {
	fs afs.Service
}

// Load loads a single definition document
func (s *Service) Load(ctx context.Context, URL string) (*construction.Definition, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download definition %v: %w", URL, err)
	}
	definition := &construction.Definition{}
	if err = yaml.Unmarshal([]byte(env.Expand(string(data))), definition); err != nil {
		return nil, fmt.Errorf("failed to decode definition %v: %w", URL, err)
	}
	if err = definition.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition %v: %w", URL, err)
	}
	return definition, nil
}

// LoadAll loads a definition file or every YAML document under a location,
// problems are merged in file name order
func (s *Service) LoadAll(ctx context.Context, URL string) (*construction.Definition, error) {
	object, err := s.fs.Object(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to locate definitions %v: %w", URL, err)
	}
	if !object.IsDir() {
		return s.Load(ctx, URL)
	}
	objects, err := s.fs.List(ctx, URL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions %v: %w", URL, err)
	}
	var URLs []string
	for _, candidate := range objects {
		if candidate.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(candidate.Name())) {
		case ".yaml", ".yml":
			URLs = append(URLs, candidate.URL())
		}
	}
	sort.Strings(URLs)
	result := &construction.Definition{}
	for _, candidate := range URLs {
		definition, err := s.Load(ctx, candidate)
		if err != nil {
			return nil, err
		}
		result.Problems = append(result.Problems, definition.Problems...)
	}
	if len(result.Problems) == 0 {
		return nil, fmt.Errorf("no definitions found in %v", URL)
	}
	return result, nil
}

// New creates definition loader
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
