package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"adconvert/internal/advisor"
	"adconvert/internal/convert"
	"adconvert/internal/logging"
	"adconvert/internal/selection"
	"adconvert/internal/services"
)

const (
	maxUploadBytes  = 4 << 30
	maxMemoryBytes  = 64 << 20
	maxRequestBytes = 1 << 20
)

// FileInfo describes the selected file without its bytes.
type FileInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      int64  `json:"size"`
	HumanSize string `json:"human_size"`
}

// BitrateBounds mirrors the configured slider.
type BitrateBounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	convert.Snapshot
	File              *FileInfo     `json:"file"`
	Bitrate           BitrateBounds `json:"bitrate"`
	AdvisorConfigured bool          `json:"advisor_configured"`
}

// BitrateRequest is the body of POST /api/convert and POST /api/advice.
type BitrateRequest struct {
	BitrateKbps int `json:"bitrate_kbps"`
}

// AdviceResponse is the body of POST /api/advice.
type AdviceResponse struct {
	BitrateKbps int    `json:"bitrate_kbps"`
	Text        string `json:"text"`
	HTML        string `json:"html"`
	Fallback    bool   `json:"fallback"`
	Error       string `json:"error,omitempty"`
}

func fileInfo(f *selection.File) *FileInfo {
	if f == nil {
		return nil
	}
	return &FileInfo{Name: f.Name, Type: f.Type, Size: f.Size, HumanSize: f.HumanSize()}
}

func (s *Server) bounds() BitrateBounds {
	return BitrateBounds{
		Min:     s.cfg.Convert.MinBitrateKbps,
		Max:     s.cfg.Convert.MaxBitrateKbps,
		Step:    s.cfg.Convert.StepKbps,
		Default: s.cfg.Convert.DefaultBitrateKbps,
	}
}

func (s *Server) status() StatusResponse {
	return StatusResponse{
		Snapshot:          s.controller.Snapshot(),
		File:              fileInfo(s.session.Current()),
		Bitrate:           s.bounds(),
		AdvisorConfigured: s.advisor.Configured(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	updates, cancel := s.controller.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(snap convert.Snapshot) bool {
		payload, err := json.Marshal(snap)
		if err != nil {
			s.logger.Warn("encode snapshot", logging.Error(err))
			return false
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(s.controller.Snapshot()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.baseCtx.Done():
			return
		case snap, ok := <-updates:
			if !ok || !send(snap) {
				return
			}
		}
	}
}

func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	part, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing form field \"file\"")
		return
	}
	defer part.Close()
	data, err := io.ReadAll(part)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	declared := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(declared); err != nil || mediaType == "application/octet-stream" {
		declared = selection.DetectType(header.Filename, data)
	}

	// A new selection ends the previous file's conversion cycle, so its
	// result must not stay downloadable.
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.writeError(w, http.StatusConflict, convert.ErrBusy.Error())
		return
	}
	file, err := s.session.Select(header.Filename, declared, data)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, selection.ErrNotVideo) {
			s.writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resetErr := s.controller.Reset()
	s.result = nil
	s.mu.Unlock()
	if resetErr != nil {
		s.writeError(w, http.StatusConflict, resetErr.Error())
		return
	}
	s.logger.Info("file selected",
		logging.String("name", file.Name),
		logging.String("type", file.Type),
		logging.String("size", file.HumanSize()),
	)
	s.writeJSON(w, http.StatusOK, fileInfo(file))
}

func (s *Server) handleClearFile(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	err := convert.ErrBusy
	if !s.running {
		err = s.controller.Reset()
	}
	if err == nil {
		s.session.Reset()
		s.result = nil
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBitrate reads {"bitrate_kbps": N}, defaulting to the configured
// bitrate. With onSlider the value must be a slider position; otherwise any
// positive bitrate is accepted.
func (s *Server) decodeBitrate(w http.ResponseWriter, r *http.Request, onSlider bool) (int, bool) {
	req := BitrateRequest{BitrateKbps: s.cfg.Convert.DefaultBitrateKbps}
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return 0, false
	}
	if !onSlider {
		if req.BitrateKbps <= 0 {
			s.writeError(w, http.StatusBadRequest, "bitrate_kbps must be positive")
			return 0, false
		}
		return req.BitrateKbps, true
	}
	if !s.cfg.BitrateAllowed(req.BitrateKbps) {
		b := s.bounds()
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("bitrate_kbps must be between %d and %d in steps of %d", b.Min, b.Max, b.Step))
		return 0, false
	}
	return req.BitrateKbps, true
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	bitrate, ok := s.decodeBitrate(w, r, true)
	if !ok {
		return
	}
	file := s.session.Current()
	if file == nil {
		s.writeError(w, http.StatusBadRequest, "no file selected")
		return
	}
	if !s.controller.Ready() {
		s.writeError(w, http.StatusServiceUnavailable, convert.ErrEngineNotReady.Error())
		return
	}

	s.mu.Lock()
	if s.running || s.controller.Snapshot().Status == convert.StatusConverting {
		s.mu.Unlock()
		s.writeError(w, http.StatusConflict, convert.ErrBusy.Error())
		return
	}
	s.running = true
	s.result = nil
	s.mu.Unlock()

	req := convert.Request{Source: file.Data, SourceName: file.Name, BitrateKbps: bitrate}
	ctx := s.baseCtx
	if id, ok := services.RequestIDFromContext(r.Context()); ok {
		ctx = services.WithRequestID(ctx, id)
	}
	s.jobs.Add(1)
	go s.runConversion(ctx, req)

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       convert.StatusConverting,
		"bitrate_kbps": bitrate,
		"source":       file.Name,
	})
}

// runConversion outlives the request that started it; it stops only when
// the server does.
func (s *Server) runConversion(ctx context.Context, req convert.Request) {
	defer s.jobs.Done()
	result, err := s.controller.Convert(ctx, req)

	s.mu.Lock()
	s.running = false
	if err == nil {
		s.result = result
	}
	s.mu.Unlock()
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("background conversion failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "conversion_failed"),
			logging.String(logging.FieldImpact, "no download available"),
		)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	result := s.result
	s.mu.Unlock()
	if result == nil {
		s.writeError(w, http.StatusNotFound, "no converted video available")
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.DownloadName}))
	w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		s.logger.Debug("download interrupted", logging.Error(err))
	}
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	bitrate, ok := s.decodeBitrate(w, r, false)
	if !ok {
		return
	}
	advice := s.advisor.GetAdvice(r.Context(), bitrate)
	resp := AdviceResponse{
		BitrateKbps: bitrate,
		Text:        advice.Text,
		HTML:        advisor.Highlight(advice.Text, advisor.HTMLStyle()),
		Fallback:    advice.Fallback,
	}
	if advice.Err != nil {
		resp.Error = advice.Err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": strings.TrimSpace(message)})
}
