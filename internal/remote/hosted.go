package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/clipreview/clipreview/internal/review"
)

// HostedStore persists the record on the standalone review API: a
// single GET/PUT JSON endpoint addressed by review identifier. No
// authentication is attached; possession of the review identifier is
// the access model.
type HostedStore struct {
	baseURL    string
	reviewID   string
	httpClient *http.Client
}

// NewHostedStore builds the hosted-endpoint transport.
func NewHostedStore(baseURL, reviewID string) (*HostedStore, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if !ValidReviewID(reviewID) {
		return nil, fmt.Errorf("invalid review id %q", reviewID)
	}
	return &HostedStore{
		baseURL:    normalized,
		reviewID:   reviewID,
		httpClient: newHTTPClient(),
	}, nil
}

// Name implements Store.
func (s *HostedStore) Name() string { return "hosted" }

// ReviewID returns the identifier this store is bound to.
func (s *HostedStore) ReviewID() string { return s.reviewID }

// Target returns the review resource URL.
func (s *HostedStore) Target() string {
	return fmt.Sprintf("%s/reviews/%s", s.baseURL, s.reviewID)
}

// Fetch implements Store.
//
// The service returns the canonical empty shape instead of 404 when
// nothing is stored, so a successful response always decodes to a
// record. An empty comment list from a never-written review is
// handled by the merge policy, not here.
func (s *HostedStore) Fetch(ctx context.Context) (*review.Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Target(), nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, &APIError{Status: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}

	rec, err := review.Decode(body)
	if err != nil {
		return nil, false, nil
	}
	return rec, true, nil
}

// Put implements Store.
func (s *HostedStore) Put(ctx context.Context, rec *review.Record) error {
	data, err := rec.Encode()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.Target(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	return nil
}

// readErrorBody captures a short error message for diagnostics.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(body))
}
