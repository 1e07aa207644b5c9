package remote

import (
	"log"
	"net/http"
	"os"
)

// Candidate is one viable transport with its resolved target.
type Candidate struct {
	Store Store
}

// Config holds the deployment-level settings the resolver draws on.
// Zero values disable the corresponding transport.
type Config struct {
	// SidecarBaseURL is the hosting server origin for the
	// authenticated sidecar transport.
	SidecarBaseURL string

	// ShareBaseURL and ShareToken enable the guest share-link
	// transport. The token comes from the navigation context of the
	// share link the client was opened from.
	ShareBaseURL string
	ShareToken   string

	// HostedBaseURL enables the hosted-endpoint transport.
	HostedBaseURL string
	// ReviewID is the explicit review identifier set by a "share for
	// review" action. When empty, one is derived from the file
	// context so that independent clients still agree on it.
	ReviewID string
}

// FileContext names the file a resolution is for. It changes when the
// engine re-attaches; deployment settings do not.
type FileContext struct {
	FileID string
	// FileName seeds the readable prefix of a derived review id.
	FileName string
	// ResourcePath is the video's own WebDAV storage path; the
	// sidecar target is derived from it. Empty for guests without
	// direct storage access.
	ResourcePath string
}

// Resolver inspects session and deployment context to decide which
// remote transports are currently viable and in what order.
//
// Priority: authenticated sidecar, then share link, then hosted
// endpoint. A deployment with none of them enabled degrades to an
// empty candidate list and the engine runs on the local cache alone.
type Resolver struct {
	config      Config
	credentials CredentialProvider
	logger      *log.Logger

	// httpClient is shared by every store this resolver constructs, so
	// repeated resolution across saves and poll ticks reuses one
	// connection pool.
	httpClient *http.Client
}

// NewResolver creates a resolver. credentials may be nil when the
// deployment has no authenticated session source. If logger is nil, a
// default logger writing to stderr is used.
func NewResolver(config Config, credentials CredentialProvider, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(os.Stderr, "[resolver] ", log.LstdFlags)
	}
	return &Resolver{
		config:      config,
		credentials: credentials,
		logger:      logger,
		httpClient:  newHTTPClient(),
	}
}

// Resolve returns the ordered candidate transports for a file.
// Construction failures disable the transport rather than failing
// resolution; "no remote transport viable" is a normal outcome.
func (r *Resolver) Resolve(file FileContext) []Candidate {
	var candidates []Candidate

	if r.config.SidecarBaseURL != "" && file.ResourcePath != "" && r.credentials != nil {
		if cred, ok := r.credentials.Credential(); ok {
			store, err := NewSidecarStore(r.config.SidecarBaseURL, file.ResourcePath, cred.AccessToken)
			if err != nil {
				r.logger.Printf("sidecar transport disabled: %v", err)
			} else {
				store.httpClient = r.httpClient
				candidates = append(candidates, Candidate{Store: store})
			}
		}
	}

	if r.config.ShareBaseURL != "" && r.config.ShareToken != "" {
		store, err := NewShareStore(r.config.ShareBaseURL, r.config.ShareToken)
		if err != nil {
			r.logger.Printf("share-link transport disabled: %v", err)
		} else {
			store.httpClient = r.httpClient
			candidates = append(candidates, Candidate{Store: store})
		}
	}

	if r.config.HostedBaseURL != "" {
		reviewID := r.config.ReviewID
		if reviewID == "" && file.FileID != "" {
			reviewID = DeriveReviewID(file.FileName, file.FileID)
		}
		if reviewID != "" {
			store, err := NewHostedStore(r.config.HostedBaseURL, reviewID)
			if err != nil {
				r.logger.Printf("hosted transport disabled: %v", err)
			} else {
				store.httpClient = r.httpClient
				candidates = append(candidates, Candidate{Store: store})
			}
		}
	}

	return candidates
}
