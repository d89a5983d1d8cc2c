package search

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/platform/httpx"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	writeWait  = 10 * time.Second
	maxQuery   = 512
)

// Recorder counts executed searches.
type Recorder interface {
	SearchExecuted(channel string, results int)
}

// Handler serves the search page, the JSON endpoint and the live socket.
type Handler struct {
	logger   *slog.Logger
	source   directory.Source
	pages    auth.Renderer
	recorder Recorder
	delay    time.Duration
	upgrader websocket.Upgrader
}

// NewHandler constructs the handler. delay <= 0 uses DefaultDelay.
func NewHandler(logger *slog.Logger, source directory.Source, pages auth.Renderer, recorder Recorder, delay time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		source:   source,
		pages:    pages,
		recorder: recorder,
		delay:    delay,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
	}
}

// MountRoutes registers the /search routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.search)
	r.Get("/open/{type}/{id}", h.open)
	r.Get("/live", h.live)
}

type response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

type pageData struct {
	Query   string
	Results []Result
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	results, err := h.run(r.Context(), query, "http")
	if err != nil {
		h.logger.Error("search", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Search Unavailable", "could not load records")
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		httpx.JSON(w, http.StatusOK, response{Query: query, Results: results})
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/search.html", "Search", pageData{Query: query, Results: results})
}

// open turns a selected result into a navigation to its detail route. The
// destination is guarded like any other navigation.
func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	t, ok := ParseType(chi.URLParam(r, "type"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, Href(t, id), http.StatusSeeOther)
}

type liveRequest struct {
	Query string `json:"query"`
}

// live reads one message per keystroke and answers only the last query of a
// burst, after the debounce delay.
func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade live search", slog.Any("error", err))
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	send := make(chan response, 1)
	done := make(chan struct{})
	go h.writePump(conn, send, done)

	debouncer := NewDebouncer(h.delay)
	defer func() {
		debouncer.Stop()
		cancel()
		close(done)
	}()

	conn.SetReadLimit(maxQuery)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg liveRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Info("live search closed", slog.Any("error", err))
			}
			return
		}
		query := strings.TrimSpace(msg.Query)
		debouncer.Schedule(func() {
			results, err := h.run(ctx, query, "live")
			if err != nil {
				h.logger.Error("live search", slog.Any("error", err))
				return
			}
			deliver(send, response{Query: query, Results: results})
		})
	}
}

// deliver replaces an unsent response with a newer one.
func deliver(send chan response, resp response) {
	for {
		select {
		case send <- resp:
			return
		default:
		}
		select {
		case <-send:
		default:
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, send <-chan response, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case resp := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(resp); err != nil {
				h.logger.Warn("write live search", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) run(ctx context.Context, query, channel string) ([]Result, error) {
	if query == "" {
		return []Result{}, nil
	}
	src, err := Load(ctx, h.source)
	if err != nil {
		return nil, err
	}
	results := Search(query, src)
	if h.recorder != nil {
		h.recorder.SearchExecuted(channel, len(results))
	}
	return results, nil
}
