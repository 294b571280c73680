// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nullstack-dev/deskbridge/internal/apierr"
)

// Store is the single-writer/many-reader persistence layer for
// Projects and Providers, backed by two JSON files. All mutation
// methods hold the same lock, so a uniqueness check and its write are
// always atomic with respect to other callers (spec §8 invariant 6).
type Store struct {
	mu sync.RWMutex

	providersPath string
	projectsPath  string

	providers []Provider
	projects  []Project
}

// Open loads (or initializes) the store from dataDir/providers.json and
// dataDir/projects.json.
func Open(dataDir string) (*Store, error) {
	s := &Store{
		providersPath: dataDir + "/providers.json",
		projectsPath:  dataDir + "/projects.json",
	}
	if err := loadJSON(s.providersPath, &s.providers); err != nil {
		return nil, err
	}
	if err := loadJSON(s.projectsPath, &s.projects); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) saveProviders() error { return saveJSON(s.providersPath, s.providers) }
func (s *Store) saveProjects() error  { return saveJSON(s.projectsPath, s.projects) }

// ListProviders returns a copy of every provider.
func (s *Store) ListProviders() []Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Provider, len(s.providers))
	copy(out, s.providers)
	return out
}

// GetProvider returns the provider with id, or NotFound.
func (s *Store) GetProvider(id string) (Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return Provider{}, apierr.NotFound("provider %q not found", id)
}

// CreateProvider assigns a new id and persists p.
func (s *Store) CreateProvider(p Provider) (Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	p.RefreshedAt = time.Now()
	s.providers = append(s.providers, p)
	if err := s.saveProviders(); err != nil {
		s.providers = s.providers[:len(s.providers)-1]
		return Provider{}, err
	}
	return p, nil
}

// UpdateProvider replaces the provider matching p.ID.
func (s *Store) UpdateProvider(p Provider) (Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.providers {
		if s.providers[i].ID == p.ID {
			prev := s.providers[i]
			p.RefreshedAt = time.Now()
			s.providers[i] = p
			if err := s.saveProviders(); err != nil {
				s.providers[i] = prev
				return Provider{}, err
			}
			return p, nil
		}
	}
	return Provider{}, apierr.NotFound("provider %q not found", p.ID)
}

// DeleteProvider removes the provider and nulls providerId on every
// referencing project (spec §8 invariant 7).
func (s *Store) DeleteProvider(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.providers {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apierr.NotFound("provider %q not found", id)
	}

	prevProviders := append([]Provider(nil), s.providers...)
	prevProjects := append([]Project(nil), s.projects...)

	s.providers = append(s.providers[:idx], s.providers[idx+1:]...)
	for i := range s.projects {
		if s.projects[i].ProviderID != nil && *s.projects[i].ProviderID == id {
			s.projects[i].ProviderID = nil
			s.projects[i].UpdatedAt = time.Now()
		}
	}

	if err := s.saveProviders(); err != nil {
		s.providers = prevProviders
		s.projects = prevProjects
		return err
	}
	if err := s.saveProjects(); err != nil {
		s.providers = prevProviders
		s.projects = prevProjects
		return err
	}
	return nil
}

// ListProjects returns a copy of every project.
func (s *Store) ListProjects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// GetProject returns the project with id, or NotFound.
func (s *Store) GetProject(id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, apierr.NotFound("project %q not found", id)
}

// ResolveWorkdir implements agent.ProjectResolver.
func (s *Store) ResolveWorkdir(projectID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == projectID {
			return p.WorkspacePath, true
		}
	}
	return "", false
}

func (s *Store) nameTaken(toolKind ToolKind, name, excludeID string) bool {
	for _, p := range s.projects {
		if p.ID == excludeID {
			continue
		}
		if p.ToolKind == toolKind && p.Name == name {
			return true
		}
	}
	return false
}

// CreateProject assigns a new id and persists p, enforcing the
// (toolKind, name) uniqueness invariant (spec §3 invariant 4).
func (s *Store) CreateProject(p Project) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(p.ToolKind, p.Name, "") {
		return Project{}, apierr.Conflict("project %q already exists for tool %q", p.Name, p.ToolKind)
	}

	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects = append(s.projects, p)
	if err := s.saveProjects(); err != nil {
		s.projects = s.projects[:len(s.projects)-1]
		return Project{}, err
	}
	return p, nil
}

// UpdateProject replaces the project matching p.ID, re-checking the
// uniqueness invariant against every other project.
func (s *Store) UpdateProject(p Project) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(p.ToolKind, p.Name, p.ID) {
		return Project{}, apierr.Conflict("project %q already exists for tool %q", p.Name, p.ToolKind)
	}

	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			prev := s.projects[i]
			p.CreatedAt = prev.CreatedAt
			p.UpdatedAt = time.Now()
			s.projects[i] = p
			if err := s.saveProjects(); err != nil {
				s.projects[i] = prev
				return Project{}, err
			}
			return p, nil
		}
	}
	return Project{}, apierr.NotFound("project %q not found", p.ID)
}

// DeleteProject removes the project with id.
func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.projects {
		if p.ID == id {
			prev := append([]Project(nil), s.projects...)
			s.projects = append(s.projects[:i:i], s.projects[i+1:]...)
			if err := s.saveProjects(); err != nil {
				s.projects = prev
				return err
			}
			return nil
		}
	}
	return apierr.NotFound("project %q not found", id)
}

// TouchLastStarted stamps lastStartedAt on project id to now.
func (s *Store) TouchLastStarted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			now := time.Now()
			prev := s.projects[i]
			s.projects[i].LastStartedAt = &now
			if err := s.saveProjects(); err != nil {
				s.projects[i] = prev
				return err
			}
			return nil
		}
	}
	return apierr.NotFound("project %q not found", id)
}
