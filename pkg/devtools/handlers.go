package devtools

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/document"
	"github.com/vango-dev/reactive/pkg/middleware"
	"github.com/vango-dev/reactive/pkg/snapshot"
)

// Handler returns the inspector's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.OpenTelemetry(s.otelOpts...))
	if s.registerer != nil {
		r.Use(middleware.Prometheus(middleware.WithRegistry(s.registerer)))
	}

	r.Get("/state", s.handleState)
	r.Post("/mutate", s.handleMutate)
	r.Route("/watches", func(r chi.Router) {
		r.Get("/", s.handleListWatches)
		r.Post("/", s.handleAddWatch)
		r.Delete("/{id}", s.handleDeleteWatch)
	})
	r.Get("/events", s.handleEvents)
	r.Get("/ws", s.handleWebSocket)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Put("/{name}", s.handleSaveSnapshot)
		r.Post("/{name}/restore", s.handleRestoreSnapshot)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		data []byte
		err  error
	)
	s.rt.Untracked(func() {
		var v any
		if v, err = document.Resolve(s.root, r.URL.Query().Get("path")); err == nil {
			data, err = document.Encode(v, document.JSON)
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

type mutateResponse struct {
	Result any `json:"result"`
}

func (s *Server) handleMutate(w http.ResponseWriter, r *http.Request) {
	var m Mutation
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		writeError(w, errors.New("X401").WithDetail("mutation body: "+err.Error()).Wrap(err))
		return
	}

	result, err := s.apply(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutateResponse{Result: result})
}

func (s *Server) handleListWatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Watches())
}

type watchRequest struct {
	Path string `json:"path"`
	Deep bool   `json:"deep"`
}

func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("X401").WithDetail("watch body: "+err.Error()).Wrap(err))
		return
	}
	info, err := s.Watch(req.Path, req.Deep)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Unwatch(id) {
		writeError(w, errors.New("X402").WithDetail("no watcher "+id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, errors.New("X401").WithDetail("since: "+err.Error()).Wrap(err))
			return
		}
		since = n
	}
	events := s.Events(since)
	if events == nil {
		events = []Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.serve(w, r, Message{Type: "hello", Watches: s.Watches()})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	infos, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if infos == nil {
		infos = []snapshot.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.SaveSnapshot(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.RestoreSnapshot(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, errors.New("X403"))
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	var re *errors.ReactiveError
	if stderrors.As(err, &re) {
		resp.Code = re.Code
		switch re.Code {
		case "X401", "X404", "D301", "D302":
			status = http.StatusBadRequest
		case "X402", "D303", "D304":
			status = http.StatusNotFound
		case "X403":
			status = http.StatusNotFound
		}
	}
	if stderrors.Is(err, snapshot.ErrInvalidName) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}
