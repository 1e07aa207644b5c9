package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8787".
	Addr string

	// DataDir is where review payloads are stored.
	DataDir string

	// Logger for request and lifecycle logging.
	Logger *log.Logger
}

// Server is the standalone review API. It exposes the review store
// over HTTP, serves the viewer page, and pushes change notifications
// to connected viewers.
type Server struct {
	config  *Config
	store   *Store
	hub     *Hub
	watcher *Watcher
	httpSrv *http.Server
}

// New creates a server. The data directory is created if needed.
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Addr == "" {
		config.Addr = ":8787"
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	store, err := NewStore(config.DataDir)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		store:  store,
		hub:    NewHub(config.Logger),
	}

	s.httpSrv = &http.Server{
		Addr:         config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler builds the routed, CORS-wrapped handler. Exposed so tests
// can drive it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{reviewId:[a-zA-Z0-9_-]{8,64}}", s.handleGetReview).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{reviewId:[a-zA-Z0-9_-]{8,64}}", s.handlePutReview).Methods(http.MethodPut)
	r.HandleFunc("/view/{reviewId:[a-zA-Z0-9_-]{8,64}}", s.handleViewPage).Methods(http.MethodGet)
	r.HandleFunc("/events", s.hub.HandleWebSocket).Methods(http.MethodGet)

	// Review links open from arbitrary origins, so CORS is fully open.
	// Only the methods the API actually serves are advertised.
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)
	return cors(r)
}

// Start begins serving. It blocks until the listener fails or Stop is
// called. The data watcher holds a filesystem handle, so it is opened
// here rather than in New; callers that only use Handler never acquire
// one.
func (s *Server) Start() error {
	watcher, err := NewWatcher(s.store.DataDir(), s.hub, s.config.Logger)
	if err != nil {
		return fmt.Errorf("failed to create data watcher: %w", err)
	}
	s.watcher = watcher

	s.hub.Start()
	s.watcher.Start()

	s.config.Logger.Printf("Review server listening on %s (data: %s)", s.config.Addr, s.store.DataDir())
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts everything down. Safe to
// call when Start was never called.
func (s *Server) Stop(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	s.hub.Stop()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	reviewID := mux.Vars(r)["reviewId"]

	data, err := s.store.Get(reviewID)
	if err != nil {
		s.config.Logger.Printf("GET /reviews/%s failed: %v", reviewID, err)
		s.writeError(w, http.StatusInternalServerError, "failed to read review")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handlePutReview(w http.ResponseWriter, r *http.Request) {
	reviewID := mux.Vars(r)["reviewId"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "review payload too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := s.store.Put(reviewID, body); err != nil {
		var invalid *ErrInvalidPayload
		if errors.As(err, &invalid) {
			s.writeError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		s.config.Logger.Printf("PUT /reviews/%s failed: %v", reviewID, err)
		s.writeError(w, http.StatusInternalServerError, "failed to store review")
		return
	}

	s.hub.Broadcast(Event{Type: EventReviewUpdate, ReviewID: reviewID})

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"ok":true}`)
}

func (s *Server) handleViewPage(w http.ResponseWriter, r *http.Request) {
	reviewID := mux.Vars(r)["reviewId"]

	data := viewPageData{
		ReviewID: reviewID,
		Name:     r.URL.Query().Get("name"),
		ShareURL: r.URL.Query().Get("share"),
	}
	if data.Name == "" {
		data.Name = reviewID
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewTemplate.Execute(w, data); err != nil {
		s.config.Logger.Printf("view page render failed: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

type viewPageData struct {
	ReviewID string
	Name     string
	ShareURL string
}

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Review: {{.Name}}</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
         margin: 0; background: #111; color: #eee; }
  header { padding: 16px 24px; border-bottom: 1px solid #333; display: flex;
           align-items: baseline; gap: 12px; }
  header h1 { font-size: 18px; margin: 0; }
  header .approval { font-size: 13px; padding: 2px 10px; border-radius: 10px;
                     background: #333; text-transform: capitalize; }
  header .approval.approved { background: #1d5c2e; }
  header .approval.revisions { background: #7a2f22; }
  main { padding: 16px 24px; max-width: 720px; }
  .comment { border-left: 3px solid #888; padding: 8px 12px; margin: 12px 0;
             background: #1a1a1a; border-radius: 0 6px 6px 0; }
  .comment .meta { font-size: 12px; color: #999; margin-bottom: 4px; }
  .comment .time { font-variant-numeric: tabular-nums; margin-right: 8px; }
  .comment.red { border-color: #d9534f; }
  .comment.yellow { border-color: #f0ad4e; }
  .comment.green { border-color: #5cb85c; }
  .comment.blue { border-color: #5bc0de; }
  .comment.purple { border-color: #b06fd8; }
  .empty { color: #777; padding: 24px 0; }
  .drawing-badge { font-size: 11px; color: #bbb; border: 1px solid #444;
                   border-radius: 4px; padding: 1px 6px; margin-left: 8px; }
</style>
</head>
<body>
<header>
  <h1>{{.Name}}</h1>
  <span class="approval" id="approval">pending</span>
</header>
<main>
  <div id="comments"><p class="empty">Loading review…</p></div>
</main>
<script>
const reviewId = {{.ReviewID}};
const shareUrl = {{.ShareURL}};

function fmtTime(seconds) {
  const s = Math.max(0, seconds || 0);
  const m = Math.floor(s / 60);
  const r = Math.floor(s % 60);
  return m + ":" + String(r).padStart(2, "0");
}

function render(review) {
  const approval = document.getElementById("approval");
  approval.textContent = review.approval || "pending";
  approval.className = "approval " + (review.approval || "pending");

  const container = document.getElementById("comments");
  const comments = (review.comments || []).slice()
    .sort((a, b) => (a.timestamp || 0) - (b.timestamp || 0));
  if (comments.length === 0) {
    container.innerHTML = '<p class="empty">No comments yet.</p>';
    return;
  }
  container.innerHTML = "";
  for (const c of comments) {
    const div = document.createElement("div");
    div.className = "comment " + (c.color || "");
    const meta = document.createElement("div");
    meta.className = "meta";
    const time = document.createElement("span");
    time.className = "time";
    time.textContent = fmtTime(c.timestamp);
    meta.appendChild(time);
    meta.appendChild(document.createTextNode(c.author || "anonymous"));
    if (c.drawing) {
      const badge = document.createElement("span");
      badge.className = "drawing-badge";
      badge.textContent = "drawing";
      meta.appendChild(badge);
    }
    const text = document.createElement("div");
    text.textContent = c.text || "";
    div.appendChild(meta);
    div.appendChild(text);
    container.appendChild(div);
  }
}

async function refresh() {
  try {
    const url = shareUrl ? shareUrl : "/reviews/" + reviewId;
    const resp = await fetch(url);
    if (!resp.ok) return;
    render(await resp.json());
  } catch (e) { /* next refresh retries */ }
}

refresh();
setInterval(refresh, 10000);

try {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "/events");
  ws.onmessage = (ev) => {
    try {
      const msg = JSON.parse(ev.data);
      if (msg.type === "review_update" && msg.review_id === reviewId) refresh();
    } catch (e) { /* ignore malformed frames */ }
  };
} catch (e) { /* polling keeps the page live without the feed */ }
</script>
</body>
</html>
`))
