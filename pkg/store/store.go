// Package store provides in-memory storage for documents and renders.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DocumentState represents the state of a stored document.
type DocumentState string

const (
	DocumentActive DocumentState = "ACTIVE"
)

// RenderState represents the state of a document render.
type RenderState string

const (
	RenderActive    RenderState = "ACTIVE"
	RenderSucceeded RenderState = "SUCCEEDED"
	RenderFailed    RenderState = "FAILED"
)

// Document represents a stored document source.
type Document struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	State       DocumentState `json:"state"`
	RevisionID  string        `json:"revisionId"`
	CreateTime  time.Time     `json:"createTime"`
	UpdateTime  time.Time     `json:"updateTime"`
	Source      string        `json:"source"`
}

// Render represents a stored render of a document revision.
type Render struct {
	Name               string          `json:"name"`
	State              RenderState     `json:"state"`
	Scene              json.RawMessage `json:"scene,omitempty"`
	Error              *RenderError    `json:"error,omitempty"`
	StartTime          time.Time       `json:"startTime"`
	EndTime            time.Time       `json:"endTime,omitempty"`
	DocumentRevisionID string          `json:"documentRevisionId"`
}

// RenderError represents the error of a failed render.
type RenderError struct {
	Message string `json:"message"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Store is a thread-safe in-memory storage for documents and renders.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*Document
	renders   map[string]*Render

	// Counters for generating unique IDs
	renderCounter int64
	revCounter    int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		documents: make(map[string]*Document),
		renders:   make(map[string]*Render),
	}
}

// CreateDocument creates a new document.
func (s *Store) CreateDocument(documentID, source, description string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("documents/%s", documentID)
	if _, exists := s.documents[name]; exists {
		return nil, fmt.Errorf("document '%s' already exists", name)
	}

	s.revCounter++
	now := time.Now()
	doc := &Document{
		Name:        name,
		Description: description,
		State:       DocumentActive,
		RevisionID:  fmt.Sprintf("%06d-000", s.revCounter),
		CreateTime:  now,
		UpdateTime:  now,
		Source:      source,
	}
	s.documents[name] = doc
	return doc, nil
}

// GetDocument retrieves a document by its full name.
func (s *Store) GetDocument(name string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[name]
	if !ok {
		return nil, fmt.Errorf("document '%s' not found", name)
	}
	return doc, nil
}

// ListDocuments returns all documents.
func (s *Store) ListDocuments() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Document, 0, len(s.documents))
	for _, doc := range s.documents {
		result = append(result, doc)
	}
	return result
}

// UpdateDocument updates a document's source.
func (s *Store) UpdateDocument(name, source, description string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[name]
	if !ok {
		return nil, fmt.Errorf("document '%s' not found", name)
	}

	s.revCounter++
	doc.Source = source
	if description != "" {
		doc.Description = description
	}
	doc.RevisionID = fmt.Sprintf("%06d-000", s.revCounter)
	doc.UpdateTime = time.Now()

	return doc, nil
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[name]; !ok {
		return fmt.Errorf("document '%s' not found", name)
	}
	delete(s.documents, name)
	return nil
}

// CreateRender creates a new render record for a document.
func (s *Store) CreateRender(documentName string) (*Render, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentName]
	if !ok {
		return nil, fmt.Errorf("document '%s' not found", documentName)
	}

	s.renderCounter++
	renderID := fmt.Sprintf("render-%d", s.renderCounter)
	name := fmt.Sprintf("%s/renders/%s", documentName, renderID)

	render := &Render{
		Name:               name,
		State:              RenderActive,
		StartTime:          time.Now(),
		DocumentRevisionID: doc.RevisionID,
	}
	s.renders[name] = render
	return render, nil
}

// GetRender retrieves a render by name.
func (s *Store) GetRender(name string) (*Render, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	render, ok := s.renders[name]
	if !ok {
		return nil, fmt.Errorf("render '%s' not found", name)
	}
	// The render goroutine keeps updating the record until it finishes, so
	// callers get a snapshot rather than the live struct.
	c := *render
	return &c, nil
}

// ListRenders returns all renders for a document.
func (s *Store) ListRenders(documentName string) []*Render {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Render
	prefix := documentName + "/renders/"
	for name, render := range s.renders {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			c := *render
			result = append(result, &c)
		}
	}
	return result
}

// CompleteRender marks a render as succeeded with its scene.
func (s *Store) CompleteRender(name string, scene json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	render, ok := s.renders[name]
	if !ok {
		return fmt.Errorf("render '%s' not found", name)
	}

	render.State = RenderSucceeded
	render.EndTime = time.Now()
	render.Scene = scene

	return nil
}

// FailRender marks a render as failed with an error.
func (s *Store) FailRender(name, message, excerpt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	render, ok := s.renders[name]
	if !ok {
		return fmt.Errorf("render '%s' not found", name)
	}

	render.State = RenderFailed
	render.EndTime = time.Now()
	render.Error = &RenderError{Message: message, Excerpt: excerpt}

	return nil
}
