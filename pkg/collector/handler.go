package collector

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"hooktrap-hq/hooktrap/pkg/event"
	"hooktrap-hq/hooktrap/pkg/event/broadcast"
	"hooktrap-hq/hooktrap/pkg/telemetry/metrics"
)

// Config carries the ingestion-time settings the handler needs. It is
// derived from the top-level configuration once at startup.
type Config struct {
	// MaxBodyBytes caps how much of a request body is stored.
	MaxBodyBytes int64

	// MaxHeaderBytes caps the total serialized size of stored headers.
	MaxHeaderBytes int

	// HeaderAllowlist is the normalized (lower-cased) set of header names
	// that may be stored.
	HeaderAllowlist map[string]struct{}

	// StoreBody toggles body capture entirely.
	StoreBody bool

	// TrustProxyHeaders controls whether client attribution honors
	// forwarding headers (see ChooseClientIP).
	TrustProxyHeaders bool
}

// Handler orchestrates the ingestion path: authorize, normalize/redact,
// persist, broadcast, acknowledge. One instance serves all collector
// routes; it owns no state beyond its injected collaborators.
type Handler struct {
	cfg         Config
	auth        *Authorizer
	redactor    *Redactor
	store       event.Store
	broadcaster *broadcast.Broadcaster
	metrics     *metrics.Collector
	logger      *slog.Logger
}

// NewHandler wires an ingestion handler. metrics may be nil when metrics
// are disabled.
func NewHandler(cfg Config, auth *Authorizer, redactor *Redactor, store event.Store, broadcaster *broadcast.Broadcaster, m *metrics.Collector) *Handler {
	return &Handler{
		cfg:         cfg,
		auth:        auth,
		redactor:    redactor,
		store:       store,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      slog.Default().With("component", "collector"),
	}
}

// Authorizer exposes the handler's token authorizer so sibling routes
// (logs, events, stats, export, cleanup) share the same token set.
func (h *Handler) Authorizer() *Authorizer {
	return h.auth
}

// Collect handles one inbound callback addressed to /{token}/c with an
// optional sub-path suffix. Each step depends on the previous one
// succeeding; a failed store write surfaces as a 500 and nothing is
// broadcast.
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request, token, subPath string) {
	if !h.auth.Authorized(token) {
		WriteNotFound(w)
		return
	}

	path := "/" + token + "/c"
	if subPath != "" {
		path += "/" + subPath
	}

	query := h.redactor.Redact(r.URL.RawQuery)
	clientIP, xff, xri := ChooseClientIP(r, h.cfg.TrustProxyHeaders)

	headers := SelectHeaders(r.Header, h.cfg.HeaderAllowlist)
	headers = ClampHeaders(headers, h.cfg.MaxHeaderBytes)

	var bodyText, bodyB64 string
	var bodyTruncated bool
	var bodyBytes int

	if h.cfg.StoreBody && methodCarriesBody(r.Method) {
		data, truncated, err := ReadBody(r.Body, h.cfg.MaxBodyBytes)
		if err != nil {
			h.logger.Error("failed to read request body", "error", err)
			WriteServerError(w)
			return
		}
		bodyTruncated = truncated
		bodyBytes = len(data)
		bodyText, bodyB64 = DecodeBody(data)
		if bodyText != "" {
			bodyText = h.redactor.Redact(bodyText)
		}
	}

	e := &event.Event{
		ReceivedAt:    event.Now(),
		Method:        r.Method,
		Path:          path,
		Query:         query,
		ClientIP:      clientIP,
		XForwardedFor: xff,
		XRealIP:       xri,
		Origin:        r.Header.Get("Origin"),
		Referer:       r.Header.Get("Referer"),
		UserAgent:     r.Header.Get("User-Agent"),
		ContentType:   r.Header.Get("Content-Type"),
		Headers:       headers,
		BodyText:      bodyText,
		BodyB64:       bodyB64,
		BodyTruncated: bodyTruncated,
	}

	id, err := h.store.AddEvent(r.Context(), e)
	if err != nil {
		h.logger.Error("failed to persist event", "error", err)
		WriteServerError(w)
		return
	}
	e.ID = id

	// Best effort: a full subscriber buffer never fails the request.
	h.broadcaster.Publish(e)

	if h.metrics != nil {
		h.metrics.RecordEvent(e.Method, bodyBytes, bodyTruncated)
	}

	h.logger.Info("event collected",
		"event_id", id,
		"method", e.Method,
		"path", e.Path,
		"client_ip", e.ClientIP,
		"content_type", e.ContentType,
		"body_truncated", e.BodyTruncated,
	)

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// methodCarriesBody reports whether the method conventionally carries a
// request body worth storing.
func methodCarriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteNotFound writes the uniform 404 used for both unknown routes and
// unknown tokens, so the response shape never reveals which it was.
func WriteNotFound(w http.ResponseWriter) {
	WriteJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found"})
}

// WriteServerError writes a generic 500 without echoing internal detail.
func WriteServerError(w http.ResponseWriter) {
	WriteJSON(w, http.StatusInternalServerError, map[string]any{"detail": "Internal server error"})
}
