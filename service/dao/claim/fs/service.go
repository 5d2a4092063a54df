package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"

	"github.com/claimkit/claimkit/model"
	"github.com/claimkit/claimkit/service/dao"
	"github.com/claimkit/claimkit/service/dao/criteria"
)

// Service implements a filesystem-backed claim snapshot store. Each claim is
// serialised as one JSON document; the abstract file system lets the base
// path point at local disk, memory or cloud storage alike.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, model.Claim] = (*Service)(nil)

// New creates a filesystem claim store rooted at basePath.
func New(basePath string) *Service {
	return &Service{basePath: basePath, fs: afs.New()}
}

// Save persists a claim snapshot.
func (s *Service) Save(ctx context.Context, claim *model.Claim) error {
	if claim == nil {
		return dao.ErrNilEntity
	}
	if claim.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(claim.Clone())
	if err != nil {
		return fmt.Errorf("failed to marshal claim: %w", err)
	}
	location := s.claimPath(claim.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save claim to %s: %w", location, err)
	}
	return nil
}

// Load retrieves a claim snapshot by id.
func (s *Service) Load(ctx context.Context, id string) (*model.Claim, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location := s.claimPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check claim %s: %w", id, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim %s: %w", id, err)
	}
	var claim model.Claim
	if err = json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim %s: %w", id, err)
	}
	return &claim, nil
}

// Delete removes a claim snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	location := s.claimPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check claim %s: %w", id, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete claim %s: %w", id, err)
	}
	return nil
}

// List returns all stored claim snapshots, optionally filtered by state.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	var claims []*model.Claim
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("error reading claim file %s: %v", object.URL(), err)
			continue
		}
		var claim model.Claim
		if err = json.Unmarshal(data, &claim); err != nil {
			log.Printf("error unmarshaling claim from %s: %v", object.URL(), err)
			continue
		}
		if !criteria.FilterByState(claim.CurrentState, parameters) {
			continue
		}
		claims = append(claims, &claim)
	}
	return claims, nil
}

func (s *Service) claimPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}
