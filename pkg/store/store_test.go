package store

import (
	"encoding/json"
	"testing"
)

func TestGetRenderReturnsSnapshot(t *testing.T) {
	s := New()
	if _, err := s.CreateDocument("deck", "x = 1\n", ""); err != nil {
		t.Fatalf("create document: %v", err)
	}
	r, err := s.CreateRender("documents/deck")
	if err != nil {
		t.Fatalf("create render: %v", err)
	}

	before, err := s.GetRender(r.Name)
	if err != nil {
		t.Fatalf("get render: %v", err)
	}
	if err := s.CompleteRender(r.Name, json.RawMessage(`{"elements":[]}`)); err != nil {
		t.Fatalf("complete render: %v", err)
	}

	// An earlier read must not observe the completion.
	if before.State != RenderActive {
		t.Errorf("snapshot state: got %s, want %s", before.State, RenderActive)
	}
	if before.Scene != nil {
		t.Errorf("snapshot scene: got %s", before.Scene)
	}

	after, err := s.GetRender(r.Name)
	if err != nil {
		t.Fatalf("get render: %v", err)
	}
	if after.State != RenderSucceeded {
		t.Errorf("state after completion: got %s, want %s", after.State, RenderSucceeded)
	}
}

func TestListRendersReturnsSnapshots(t *testing.T) {
	s := New()
	if _, err := s.CreateDocument("deck", "x = 1\n", ""); err != nil {
		t.Fatalf("create document: %v", err)
	}
	r, err := s.CreateRender("documents/deck")
	if err != nil {
		t.Fatalf("create render: %v", err)
	}

	listed := s.ListRenders("documents/deck")
	if len(listed) != 1 {
		t.Fatalf("expected 1 render, got %d", len(listed))
	}
	if err := s.FailRender(r.Name, "boom", ""); err != nil {
		t.Fatalf("fail render: %v", err)
	}

	if listed[0].State != RenderActive {
		t.Errorf("snapshot state: got %s, want %s", listed[0].State, RenderActive)
	}
	if listed[0].Error != nil {
		t.Errorf("snapshot error: got %+v", listed[0].Error)
	}
}
