package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/clipreview/clipreview/internal/review"
)

// ShareRecordName is the conventional sidecar name inside a shared
// folder's public namespace. Guests on the same share link all read
// and write this one resource.
const ShareRecordName = "review.json"

// publicPrefix is the public-access WebDAV namespace scoped by share
// token.
const publicPrefix = "/remote.php/dav/public-files"

// ShareStore persists the record through an anonymous share link.
// The share token doubles as the credential: a basic-style login with
// the token as username and no password, which is how public links
// authenticate on the hosting server.
type ShareStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewShareStore builds the guest transport for a share token.
func NewShareStore(baseURL, token string) (*ShareStore, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("share token cannot be empty")
	}
	return &ShareStore{
		baseURL:    normalized,
		token:      token,
		httpClient: newHTTPClient(),
	}, nil
}

// Name implements Store.
func (s *ShareStore) Name() string { return "share-link" }

// Target returns the public-namespace record URL.
func (s *ShareStore) Target() string {
	return fmt.Sprintf("%s%s/%s/%s", s.baseURL, publicPrefix, s.token, ShareRecordName)
}

// Fetch implements Store.
func (s *ShareStore) Fetch(ctx context.Context) (*review.Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Target(), nil)
	if err != nil {
		return nil, false, err
	}
	req.SetBasicAuth(s.token, "")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, &APIError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	if len(body) == 0 {
		return nil, false, nil
	}

	rec, err := review.Decode(body)
	if err != nil {
		return nil, false, nil
	}
	return rec, true, nil
}

// Put implements Store.
func (s *ShareStore) Put(ctx context.Context, rec *review.Record) error {
	data, err := rec.Encode()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.Target(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.SetBasicAuth(s.token, "")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode}
	}
	return nil
}
