package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/edvin/equipreg/internal/platform"
)

// AuditLogger records every mutating API request, with the caller identity
// it ran under, as an "audit" log entry. Entries are written asynchronously;
// requests finishing after Close are not audited.
type AuditLogger struct {
	logger zerolog.Logger
	ch     chan auditEntry
	done   chan struct{}

	mu     sync.RWMutex // guards closed and sends on ch
	closed bool
}

type auditEntry struct {
	ID           string
	RequestID    string
	CallerName   string
	Caller       string
	Method       string
	Path         string
	ResourceType string
	ResourceID   string
	StatusCode   int
	RequestBody  json.RawMessage
}

func NewAuditLogger(logger zerolog.Logger) *AuditLogger {
	al := &AuditLogger{
		logger: logger.With().Str("component", "audit").Logger(),
		ch:     make(chan auditEntry, 1024),
		done:   make(chan struct{}),
	}
	go al.drain()
	return al
}

func (al *AuditLogger) drain() {
	defer close(al.done)
	for entry := range al.ch {
		ev := al.logger.Info().
			Str("audit_id", entry.ID).
			Str("request_id", entry.RequestID).
			Str("caller_name", entry.CallerName).
			Str("caller", entry.Caller).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Int("status", entry.StatusCode)
		if entry.ResourceType != "" {
			ev = ev.Str("resource_type", entry.ResourceType)
		}
		if entry.ResourceID != "" {
			ev = ev.Str("resource_id", entry.ResourceID)
		}
		if len(entry.RequestBody) > 0 {
			ev = ev.RawJSON("request_body", entry.RequestBody)
		}
		ev.Msg("audit")
	}
}

// Close writes the remaining entries and stops the writer. It is safe to
// call more than once.
func (al *AuditLogger) Close() {
	al.mu.Lock()
	if !al.closed {
		al.closed = true
		close(al.ch)
	}
	al.mu.Unlock()
	<-al.done
}

// enqueue hands entry to the writer without blocking the request.
func (al *AuditLogger) enqueue(entry auditEntry) {
	al.mu.RLock()
	defer al.mu.RUnlock()
	if al.closed {
		al.logger.Warn().Str("path", entry.Path).Msg("audit log closed, dropping entry")
		return
	}
	select {
	case al.ch <- entry:
	default:
		al.logger.Warn().Msg("audit log buffer full, dropping entry")
	}
}

// Middleware returns a chi middleware that logs mutating API requests.
func (al *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only audit mutating operations.
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		// Read and re-buffer the request body.
		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		resourceType, resourceID := extractResource(r.URL.Path)

		entry := auditEntry{
			ID:           platform.NewID(),
			RequestID:    middleware.GetReqID(r.Context()),
			Method:       r.Method,
			Path:         r.URL.Path,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			StatusCode:   sw.status,
		}
		if identity := GetIdentity(r.Context()); identity != nil {
			entry.CallerName = identity.Name
			entry.Caller = string(identity.Identity)
		}
		if len(bodyBytes) > 0 && json.Valid(bodyBytes) {
			entry.RequestBody = sanitizeBody(bodyBytes)
		}

		al.enqueue(entry)
	})
}

// extractResource returns the last resource type and optional ID of an API
// path, e.g. /api/v1/assets/7/transfer -> (transfer, "") and
// /api/v1/assets/7 -> (assets, 7).
func extractResource(path string) (resourceType, resourceID string) {
	parts := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i%2 == 0 {
			resourceType = part
			resourceID = ""
		} else {
			resourceID = part
		}
	}
	return resourceType, resourceID
}

var sensitiveFields = map[string]bool{
	"api_key": true, "secret": true, "token": true,
}

func sanitizeBody(body []byte) json.RawMessage {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}
	for k := range data {
		if sensitiveFields[k] {
			data[k] = "[REDACTED]"
		}
	}
	sanitized, _ := json.Marshal(data)
	return sanitized
}
