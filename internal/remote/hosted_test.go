package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipreview/clipreview/internal/review"
)

func TestHostedFetchEmptyShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"comments":[],"approval":"pending"}`))
	}))
	defer srv.Close()

	store, err := NewHostedStore(srv.URL, "clip-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewHostedStore failed: %v", err)
	}

	rec, ok, err := store.Fetch(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected record, got ok=%v err=%v", ok, err)
	}
	if rec.Approval != review.ApprovalPending || len(rec.Comments) != 0 {
		t.Errorf("expected canonical empty shape, got %+v", rec)
	}
}

func TestHostedPutAndFetchRoundTrip(t *testing.T) {
	var stored []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			stored, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"ok":true}`))
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write(stored)
		}
	}))
	defer srv.Close()

	store, err := NewHostedStore(srv.URL, "clip-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewHostedStore failed: %v", err)
	}

	rec := review.NewRecord("file-1")
	rec.AddComment(review.Comment{ID: "c1", Timestamp: 3.5, Text: "note", Author: "a", Color: review.ColorBlue, CreatedAt: "2024-06-01T10:00:00Z"})
	if err := store.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Fetch(context.Background())
	if err != nil || !ok {
		t.Fatalf("Fetch failed: ok=%v err=%v", ok, err)
	}
	if len(got.Comments) != 1 || got.Comments[0] != rec.Comments[0] {
		t.Errorf("round trip changed comments: %+v", got.Comments)
	}
}

func TestHostedNonSuccessIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
	}))
	defer srv.Close()

	store, err := NewHostedStore(srv.URL, "clip-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewHostedStore failed: %v", err)
	}

	err = store.Put(context.Background(), review.NewRecord("file-1"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.Status)
	}
}

func TestHostedMalformedPayloadIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	store, err := NewHostedStore(srv.URL, "clip-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewHostedStore failed: %v", err)
	}

	_, ok, err := store.Fetch(context.Background())
	if err != nil {
		t.Fatalf("malformed payload must not surface an error, got %v", err)
	}
	if ok {
		t.Error("malformed payload must be treated as absent")
	}
}

func TestHostedRejectsInvalidReviewID(t *testing.T) {
	if _, err := NewHostedStore("https://example.com", "short"); err == nil {
		t.Error("expected short review id to be rejected")
	}
	if _, err := NewHostedStore("https://example.com", "has spaces in it"); err == nil {
		t.Error("expected review id with spaces to be rejected")
	}
}

func TestSidecarFetchSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.URL.Path != "/remote.php/dav/spaces/personal/clip.mp4.review.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(review.NewRecord("file-1"))
	}))
	defer srv.Close()

	store, err := NewSidecarStore(srv.URL, "/spaces/personal/clip.mp4", "tok-1")
	if err != nil {
		t.Fatalf("NewSidecarStore failed: %v", err)
	}

	_, ok, err := store.Fetch(context.Background())
	if err != nil || !ok {
		t.Fatalf("Fetch failed: ok=%v err=%v", ok, err)
	}
}

func TestSidecarAbsentIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store, err := NewSidecarStore(srv.URL, "/spaces/personal/clip.mp4", "tok-1")
	if err != nil {
		t.Fatalf("NewSidecarStore failed: %v", err)
	}

	_, ok, err := store.Fetch(context.Background())
	if err != nil {
		t.Fatalf("missing sidecar must not be an error, got %v", err)
	}
	if ok {
		t.Error("missing sidecar must be reported as absent")
	}
}

func TestShareStoreUsesTokenAsBasicCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user != "share-tok" {
			t.Errorf("expected basic auth with share token, got user=%q ok=%v", user, ok)
		}
		if r.URL.Path != "/remote.php/dav/public-files/share-tok/review.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store, err := NewShareStore(srv.URL, "share-tok")
	if err != nil {
		t.Fatalf("NewShareStore failed: %v", err)
	}

	if err := store.Put(context.Background(), review.NewRecord("file-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
}
