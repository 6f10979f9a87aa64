package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"gavel/internal/catalog"
	"gavel/internal/config"
	"gavel/internal/jobs"
	"gavel/internal/logging"
	"gavel/internal/pipeline"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/transcribe", srv.handleTranscribe)
	mux.HandleFunc("/transcript/", srv.handleTranscript)
	mux.HandleFunc("/list-transcripts", srv.handleListTranscripts)
	mux.HandleFunc("/job_status/", srv.handleJobStatus)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfg := s.daemon.cfg
	target := cfg.Storage.Bucket
	if cfg.Storage.Backend == "memory" {
		target = "memory"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"model":                cfg.Transcribe.Model,
		"storage_target":       target,
		"chunk_length_minutes": cfg.Transcribe.ChunkMinutes,
	})
}

type transcribeRequest struct {
	SourceURL   string   `json:"source_url"`
	Year        string   `json:"year"`
	Committee   string   `json:"committee"`
	BillName    string   `json:"bill_name"`
	VideoTitle  string   `json:"video_title"`
	HearingDate string   `json:"hearing_date"`
	Room        string   `json:"room"`
	AMPM        string   `json:"ampm"`
	BillIDs     []string `json:"bill_ids"`
}

func (s *apiServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.HearingDate == "" {
		body.HearingDate = time.Now().Format("2006-01-02")
	}

	req := pipeline.Request{
		SourceURL:   body.SourceURL,
		Year:        body.Year,
		Committee:   body.Committee,
		BillName:    body.BillName,
		VideoTitle:  body.VideoTitle,
		HearingDate: body.HearingDate,
		Room:        body.Room,
		AMPM:        body.AMPM,
		BillIDs:     body.BillIDs,
	}
	if missing := req.Validate(); len(missing) > 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "Missing required fields",
			"required": missing,
		})
		return
	}

	job, err := s.daemon.orchestrator.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "Transcription started in background",
	})
}

func (s *apiServer) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	folderPath := strings.Trim(strings.TrimPrefix(r.URL.Path, "/transcript/"), "/")
	if !catalog.ValidFolderPath(folderPath) {
		s.writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	stored, err := s.daemon.catalog.Load(r.Context(), folderPath)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Transcript not found")
			return
		}
		s.log().Error("failed to fetch transcript", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch transcript")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"metadata":    stored.Metadata,
		"transcript":  stored.Transcript,
		"folder_path": folderPath,
	})
}

func (s *apiServer) handleListTranscripts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries, err := s.daemon.catalog.List(r.Context())
	if err != nil {
		s.log().Error("failed to list transcripts", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to list transcripts")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"transcripts": entries,
		"count":       len(entries),
	})
}

func (s *apiServer) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/job_status/")
	if jobID == "" || strings.Contains(jobID, "/") {
		s.writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	job, err := s.daemon.store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
