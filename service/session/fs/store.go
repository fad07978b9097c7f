// Package fs implements a session store persisting one JSON document per
// user with viant/afs, so any afs backed location (local, mem, cloud) works.
package fs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	afsurl "github.com/viant/afs/url"
	"github.com/viant/kgflow/internal/clock"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/model/state"
	"github.com/viant/kgflow/service/session"
)

type document struct {
	UserID  string        `json:"userId"`
	Updated time.Time     `json:"updated"`
	Values  state.Context `json:"values"`
}

// Store represents file system session store; zero ttl disables expiry
type Store struct {
	basePath string
	fs       afs.Service
	ttl      time.Duration
	now      clock.Func
	mu       sync.RWMutex
}

var _ session.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, userID string) (state.Context, error) {
	if userID == "" {
		return nil, session.ErrInvalidUser
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	filePath := s.sessionPath(userID)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check session %s: %w", filePath, err)
	}
	if !exists {
		return state.NewContext(), nil
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", filePath, err)
	}
	doc := &document{}
	if err = json.Unmarshal(data, doc); err != nil {
		logging.FromContext(ctx).Warn("discarding corrupted session", "user", userID, "error", err)
		return state.NewContext(), nil
	}
	if s.ttl > 0 && s.now().Sub(doc.Updated) > s.ttl {
		return state.NewContext(), nil
	}
	if doc.Values == nil {
		doc.Values = state.NewContext()
	}
	return doc.Values, nil
}

func (s *Store) Put(ctx context.Context, userID string, values state.Context) error {
	if userID == "" {
		return session.ErrInvalidUser
	}
	data, err := json.Marshal(&document{UserID: userID, Updated: s.now(), Values: values})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.sessionPath(userID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save session to file %s: %w", filePath, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return session.ErrInvalidUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.sessionPath(userID)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil || !exists {
		return err
	}
	if err = s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

func (s *Store) sessionPath(userID string) string {
	return afsurl.Join(s.basePath, base64.RawURLEncoding.EncodeToString([]byte(userID))+".json")
}

// New creates file system session store
func New(basePath string, ttl time.Duration) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	basePath = afsurl.Normalize(path.Clean(basePath), file.Scheme)
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Store{basePath: basePath, fs: fs, ttl: ttl, now: clock.Now}, nil
}
