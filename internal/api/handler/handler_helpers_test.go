package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	mw "github.com/edvin/equipreg/internal/api/middleware"
	"github.com/edvin/equipreg/internal/host"
	"github.com/edvin/equipreg/internal/kv"
	"github.com/edvin/equipreg/internal/model"
)

const (
	owner      = model.Identity("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	technician = model.Identity("ST2PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGN")
	stranger   = model.Identity("ST3PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGO")

	feb2021 int64 = 1612137600
	feb2025 int64 = 1738368000
)

// newRuntime returns a deployed runtime over an in-memory store.
func newRuntime(t *testing.T) *host.Runtime {
	t.Helper()
	rt := host.New(kv.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, rt.Deploy(context.Background(), owner))
	return rt
}

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withCaller injects an authenticated caller into the request context.
func withCaller(r *http.Request, id model.Identity) *http.Request {
	return r.WithContext(mw.WithIdentity(r.Context(), &mw.CallerIdentity{Name: "test", Identity: id}))
}

// errorBody is the decoded JSON error response.
type errorBody struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
}

// decodeErrorResponse parses the JSON error response body.
func decodeErrorResponse(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
