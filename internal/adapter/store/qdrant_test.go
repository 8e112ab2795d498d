package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docrag/internal/domain"
)

func TestQdrantEnsureCollectionCreatesWhenMissing(t *testing.T) {
	var created map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/documents":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/documents":
			json.NewDecoder(r.Body).Decode(&created)
			w.Write([]byte(`{"result": true}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL, Collection: "documents"})
	if err := s.EnsureCollection(context.Background(), "documents", 384); err != nil {
		t.Fatal(err)
	}

	vectors, ok := created["vectors"].(map[string]any)
	if !ok {
		t.Fatalf("create request missing vectors config: %v", created)
	}
	if vectors["size"] != float64(384) {
		t.Errorf("wrong dimension: %v", vectors["size"])
	}
	if vectors["distance"] != "Cosine" {
		t.Errorf("wrong distance: %v", vectors["distance"])
	}
}

func TestQdrantEnsureCollectionSkipsWhenPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("existing collection must not be recreated: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"result": {}}`))
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL, Collection: "documents"})
	if err := s.EnsureCollection(context.Background(), "documents", 384); err != nil {
		t.Fatal(err)
	}
}

func TestQdrantUpsertSendsPointsWithPayload(t *testing.T) {
	var body struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/documents/points" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("upsert must wait for commit")
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"result": {}}`))
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL, Collection: "documents"})
	records := []domain.EmbeddingRecord{{
		ID:       "abc123",
		Vector:   []float32{0.1, 0.2},
		Text:     "hello",
		Metadata: map[string]any{"source_path": "docs/a.pdf"},
	}}
	if err := s.Upsert(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	if len(body.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(body.Points))
	}
	p := body.Points[0]
	if p.ID != "abc123" {
		t.Errorf("wrong id: %s", p.ID)
	}
	if p.Payload["text"] != "hello" {
		t.Errorf("payload must carry text: %v", p.Payload)
	}
	if p.Payload["source_path"] != "docs/a.pdf" {
		t.Errorf("payload must carry metadata: %v", p.Payload)
	}
}

func TestQdrantSearchBuildsFilterAndParsesResults(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/documents/points/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.Write([]byte(`{"result": [
			{"id": "abc", "score": 0.91, "payload": {"text": "hit one", "source_path": "docs/a.pdf"}},
			{"id": "def", "score": 0.75, "payload": {"text": "hit two", "source_path": "docs/b.pdf"}}
		]}`))
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL, Collection: "documents"})
	results, err := s.Search(context.Background(), []float32{0.1, 0.2}, 5,
		map[string]string{"source_path": "docs/a.pdf"})
	if err != nil {
		t.Fatal(err)
	}

	if req["limit"] != float64(5) {
		t.Errorf("wrong limit: %v", req["limit"])
	}
	if req["with_payload"] != true {
		t.Error("search must request payloads")
	}
	filter, ok := req["filter"].(map[string]any)
	if !ok {
		t.Fatalf("filters must produce a filter clause: %v", req)
	}
	must, ok := filter["must"].([]any)
	if !ok || len(must) != 1 {
		t.Fatalf("expected one must condition: %v", filter)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "abc" || results[0].Score != 0.91 {
		t.Errorf("wrong first result: %+v", results[0])
	}
	if results[0].Text != "hit one" {
		t.Errorf("text must come from payload: %q", results[0].Text)
	}
	if results[0].Metadata["source_path"] != "docs/a.pdf" {
		t.Errorf("metadata must exclude text and keep the rest: %v", results[0].Metadata)
	}
	if _, ok := results[0].Metadata["text"]; ok {
		t.Error("text must not be duplicated into metadata")
	}
}

func TestQdrantSearchNoFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req["filter"]; ok {
			t.Error("empty filters must omit the filter clause")
		}
		w.Write([]byte(`{"result": []}`))
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL, Collection: "documents"})
	if _, err := s.Search(context.Background(), []float32{0.1}, 5, nil); err != nil {
		t.Fatal(err)
	}
}
