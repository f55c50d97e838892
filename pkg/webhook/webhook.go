// Package webhook implements the stateless delivery mode: one update per inbound HTTP call.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"zcsbot/pkg/bus"
	"zcsbot/pkg/channel"
	"zcsbot/pkg/channel/telegram"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

const (
	okBody          = "OK"
	missingBodyText = "No body provided"
)

// statusByCategory maps error categories to invocation status codes.
var statusByCategory = map[string]int{
	bus.ErrorMissingBody:    http.StatusBadRequest,
	bus.ErrorMalformedInput: http.StatusInternalServerError,
	bus.ErrorConfiguration:  http.StatusInternalServerError,
	bus.ErrorDispatch:       http.StatusInternalServerError,
}

// Response is the synchronous result of one invocation.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Runtime is the handler and platform sender bound to one bot identity.
type Runtime struct {
	Handler channel.Handler
	Sender  channel.Sender
}

// Factory builds the runtime on first use.
type Factory func() (*Runtime, error)

// Lazy builds a Runtime at most once per process. Failed builds are retried on the next call.
type Lazy struct {
	factory Factory

	mu      sync.Mutex
	runtime *Runtime
}

// NewLazy wraps factory in a lazily initialized, concurrency-safe cache.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the cached runtime, building it if needed.
func (l *Lazy) Get() (*Runtime, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.runtime != nil {
		return l.runtime, nil
	}
	if l.factory == nil {
		return nil, bus.NewError(bus.ErrorConfiguration, "runtime factory is not configured")
	}

	runtime, err := l.factory()
	if err != nil {
		return nil, bus.WrapError(bus.ErrorConfiguration, "build runtime", err)
	}
	if runtime == nil || runtime.Handler == nil || runtime.Sender == nil {
		return nil, bus.NewError(bus.ErrorConfiguration, "runtime factory returned an incomplete runtime")
	}

	l.runtime = runtime
	return runtime, nil
}

// Handler serves the stateless webhook route.
type Handler struct {
	runtime *Lazy
	log     *slog.Logger
}

// NewHandler constructs a webhook handler over a lazily built runtime.
func NewHandler(runtime *Lazy, log *slog.Logger) (*Handler, error) {
	if runtime == nil {
		return nil, errors.New("runtime is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Handler{runtime: runtime, log: log.With("component", "webhook")}, nil
}

// Invoke processes exactly one update payload. It never panics and never returns an error;
// every fault is reported through the response status.
func (h *Handler) Invoke(ctx context.Context, body []byte) (resp Response) {
	invocationID := uuid.NewString()
	log := h.log.With("invocation_id", invocationID)

	defer func() {
		if recovered := recover(); recovered != nil {
			err := bus.NewError(bus.ErrorDispatch, fmt.Sprintf("panic: %v", recovered))
			log.Error("Recovered from panic while processing update", "error", err)
			resp = errorResponse(err)
		}
	}()

	if len(body) == 0 {
		log.Warn("Rejected invocation without body")
		return errorResponse(bus.NewError(bus.ErrorMissingBody, missingBodyText))
	}

	update, err := telegram.ParseUpdate(body)
	if err != nil {
		log.Error("Failed to parse update", "category", bus.CategoryFromError(err), "error", err)
		return errorResponse(err)
	}

	log = log.With("update_id", update.ID, "kind", update.Kind.String(), "key", update.Key())

	runtime, err := h.runtime.Get()
	if err != nil {
		log.Error("Failed to initialize bot runtime", "error", err)
		return errorResponse(err)
	}

	reply, err := channel.Deliver(ctx, runtime.Handler, runtime.Sender, update)
	if err != nil {
		log.Error("Failed to process update", "category", bus.CategoryFromError(err), "error", err)
		return errorResponse(err)
	}

	if reply != nil {
		log.Info("Sent reply", "chat_id", reply.ChatID, "format", reply.Format.String())
	} else {
		log.Debug("No reply for update")
	}

	return Response{StatusCode: http.StatusOK, Body: encodeBody(okBody)}
}

// ServeHTTP accepts POSTed updates. GET answers a health probe.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		writeResponse(w, Response{StatusCode: http.StatusOK, Body: `{"ok":true,"message":"Webhook function is up"}`})
		return
	default:
		w.Header().Set("Allow", "GET, POST")
		writeResponse(w, Response{StatusCode: http.StatusMethodNotAllowed, Body: encodeBody("Method Not Allowed")})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.log.Error("Failed to read request body", "error", err)
		writeResponse(w, errorResponse(bus.WrapError(bus.ErrorMalformedInput, "read body", err)))
		return
	}

	writeResponse(w, h.Invoke(r.Context(), body))
}

func errorResponse(err error) Response {
	category := bus.CategoryFromError(err)
	status, ok := statusByCategory[category]
	if !ok {
		status = http.StatusInternalServerError
	}

	if category == bus.ErrorMissingBody {
		return Response{StatusCode: status, Body: encodeBody(missingBodyText)}
	}

	return Response{StatusCode: status, Body: encodeBody("Error: " + err.Error())}
}

// encodeBody renders text as a JSON string literal.
func encodeBody(text string) string {
	encoded, err := json.Marshal(text)
	if err != nil {
		return `"Error"`
	}
	return string(encoded)
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
