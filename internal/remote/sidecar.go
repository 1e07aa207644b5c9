package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/clipreview/clipreview/internal/review"
)

// SidecarSuffix is appended to a resource's storage path to name its
// review sidecar.
const SidecarSuffix = ".review.json"

// davPrefix is the WebDAV mount on the hosting server.
const davPrefix = "/remote.php/dav"

// SidecarStore persists the record as a sidecar file next to the
// source video over WebDAV, authenticated with a bearer credential.
type SidecarStore struct {
	baseURL    string // server origin, e.g. https://cloud.example.com
	davPath    string // resource storage path including sidecar suffix
	token      string
	httpClient *http.Client
}

// NewSidecarStore builds the authenticated sidecar transport.
// resourcePath is the video's own WebDAV storage path; the sidecar
// suffix is appended here.
func NewSidecarStore(baseURL, resourcePath, token string) (*SidecarStore, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if resourcePath == "" {
		return nil, fmt.Errorf("resource path cannot be empty")
	}
	return &SidecarStore{
		baseURL:    normalized,
		davPath:    resourcePath + SidecarSuffix,
		token:      token,
		httpClient: newHTTPClient(),
	}, nil
}

// Name implements Store.
func (s *SidecarStore) Name() string { return "sidecar" }

// Target returns the full sidecar URL, for logging and status output.
func (s *SidecarStore) Target() string {
	return s.baseURL + davPrefix + s.davPath
}

// Fetch implements Store. A 404 (sidecar never written) is reported
// as absent, not an error.
func (s *SidecarStore) Fetch(ctx context.Context) (*review.Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Target(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

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
		// Malformed sidecar is treated the same as absence.
		return nil, false, nil
	}
	return rec, true, nil
}

// Put implements Store. The body matches what browser clients write:
// pretty-printed JSON with an octet-stream content type.
func (s *SidecarStore) Put(ctx context.Context, rec *review.Record) error {
	data, err := rec.Encode()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.Target(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+s.token)

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
