package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"zcsbot/pkg/channel"
	"zcsbot/pkg/config"
)

const (
	defaultHealthHost = "0.0.0.0"
	defaultHealthPort = 18790
)

// Service hosts the bot process: channel adapters plus the HTTP status server
// and any mounted routes (the webhook route in serve mode).
type Service struct {
	cfg      *config.Config
	log      *slog.Logger
	handler  channel.Handler
	channels []channel.Adapter
	routes   map[string]http.Handler

	mu            sync.RWMutex
	startedAt     time.Time
	listening     bool
	address       string
	channelStates map[string]channelState
}

type channelState struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

type statusResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Listening     bool                    `json:"listening"`
	Routes        []string                `json:"routes,omitempty"`
	Channels      map[string]channelState `json:"channels"`
}

// NewService builds a gateway over handler. Adapters are optional; a service
// without adapters must have at least one route mounted before Run.
func NewService(cfg *config.Config, handler channel.Handler, adapters []channel.Adapter, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if len(adapters) > 0 && handler == nil {
		return nil, errors.New("handler is required when channel adapters are configured")
	}
	if log == nil {
		log = slog.Default()
	}

	channelStates := make(map[string]channelState, len(adapters))
	for _, adapter := range adapters {
		channelStates[adapter.Name()] = channelState{}
	}

	return &Service{
		cfg:           cfg,
		log:           log.With("component", "gateway.service"),
		handler:       handler,
		channels:      adapters,
		routes:        make(map[string]http.Handler),
		channelStates: channelStates,
	}, nil
}

// Mount registers an extra HTTP route served next to the status endpoints.
func (s *Service) Mount(path string, handler http.Handler) error {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	if path == "/" || path == "/healthz" || path == "/readyz" {
		return fmt.Errorf("route %q is reserved", path)
	}
	if handler == nil {
		return fmt.Errorf("handler for route %q is required", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.routes[path]; exists {
		return fmt.Errorf("route %q is already mounted", path)
	}
	s.routes[path] = handler
	return nil
}

// Run serves until ctx is cancelled, the HTTP server fails or an adapter stops with an error.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(s.channels) == 0 && len(s.mountedRoutes()) == 0 {
		return errors.New("nothing to run: no channel adapters or routes configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	serverErrors := make(chan error, 1)
	listener, err := s.listen()
	if err != nil {
		return err
	}
	go s.runHTTPServer(ctx, listener, serverErrors)

	errCh := make(chan error, len(s.channels))
	for _, adapter := range s.channels {
		s.setChannelState(adapter.Name(), channelState{Running: true})

		go func() {
			err := adapter.Run(ctx, s.handler)
			s.setChannelState(adapter.Name(), channelState{Running: false, Error: errorString(err)})
			if err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("run %s channel: %w", adapter.Name(), err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErrors:
		return err
	case err := <-errCh:
		return err
	}
}

// Address returns the bound listen address once the server is up.
func (s *Service) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Service) listen() (net.Listener, error) {
	host := strings.TrimSpace(s.cfg.Gateway.Host)
	if host == "" {
		host = defaultHealthHost
	}

	port := s.cfg.Gateway.Port
	if port <= 0 {
		port = defaultHealthPort
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return listener, nil
}

func (s *Service) runHTTPServer(ctx context.Context, listener net.Listener, errCh chan<- error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	for path, handler := range s.snapshotRoutes() {
		mux.Handle(path, handler)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.mu.Lock()
	s.listening = true
	s.address = listener.Addr().String()
	s.mu.Unlock()

	s.log.Info("Gateway HTTP server started", "address", listener.Addr().String(), "routes", strings.Join(s.mountedRoutes(), ","))
	err := server.Serve(listener)

	s.mu.Lock()
	s.listening = false
	s.mu.Unlock()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("serve http: %w", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !s.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	routes := s.mountedRoutes()

	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	channels := make(map[string]channelState, len(s.channelStates))
	for name, state := range s.channelStates {
		channels[name] = state
	}

	return statusResponse{
		Status:        status,
		UptimeSeconds: uptime,
		Listening:     s.listening,
		Routes:        routes,
		Channels:      channels,
	}
}

// isReady reports whether updates can be delivered. With adapters configured at
// least one must be running; without adapters the HTTP server must be listening.
func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.channelStates) == 0 {
		return s.listening && len(s.routes) > 0
	}

	for _, state := range s.channelStates {
		if state.Running {
			return true
		}
	}

	return false
}

func (s *Service) mountedRoutes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.routes))
	for path := range s.routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (s *Service) snapshotRoutes() map[string]http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	routes := make(map[string]http.Handler, len(s.routes))
	for path, handler := range s.routes {
		routes[path] = handler
	}
	return routes
}

func (s *Service) setChannelState(name string, state channelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelStates[name] = state
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
