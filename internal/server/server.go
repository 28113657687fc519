package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/example/go-ttsr/internal/audio"
	"github.com/example/go-ttsr/internal/tts"
	"github.com/example/go-ttsr/internal/voice"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Generator is the generation surface the handler drives.
type Generator interface {
	Start(text string, req tts.Request) (*tts.Generation, error)
	Cancel()
	CancelGeneration(gen *tts.Generation) bool
	Status() tts.Status
	Recording() *tts.Recording
	Discard()
	DismissError()
	SelectVoice(v voice.Voice)
	Selected() voice.Voice
}

// VoiceRegistry resolves and lists voices.
type VoiceRegistry interface {
	List() []voice.Info
	Lookup(id string) (voice.Voice, error)
	AddCustom(name, style string) (voice.ClonedVoice, error)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxBodyBytes   int64
	requestTimeout time.Duration
	downloadPrefix string
	logger         *slog.Logger
	now            func() time.Time
}

func defaultOptions() options {
	return options{
		maxBodyBytes:   1 << 20,
		requestTimeout: 10 * time.Minute,
		downloadPrefix: tts.DefaultDownloadPrefix,
		logger:         slog.Default(),
		now:            time.Now,
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxBodyBytes caps the size of JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) { o.maxBodyBytes = n }
}

// WithRequestTimeout sets the deadline for synchronous POST /tts requests.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithDownloadPrefix sets the file name prefix used by GET /recording.
func WithDownloadPrefix(p string) Option {
	return func(o *options) { o.downloadPrefix = p }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time source used for download names.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	gen    Generator
	voices VoiceRegistry
	opts   options
	log    *slog.Logger
}

// NewHandler returns an http.Handler exposing the generation API.
func NewHandler(gen Generator, voices VoiceRegistry, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		gen:    gen,
		voices: voices,
		opts:   opts,
		log:    opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /voices", h.handleListVoices)
	mux.HandleFunc("POST /voices", h.handleAddVoice)
	mux.HandleFunc("GET /voice", h.handleSelectedVoice)
	mux.HandleFunc("POST /voice", h.handleSelectVoice)
	mux.HandleFunc("POST /generate", h.handleGenerate)
	mux.HandleFunc("POST /cancel", h.handleCancel)
	mux.HandleFunc("GET /status", h.handleStatus)
	mux.HandleFunc("DELETE /error", h.handleDismissError)
	mux.HandleFunc("GET /recording", h.handleRecording)
	mux.HandleFunc("DELETE /recording", h.handleDiscard)
	mux.HandleFunc("POST /tts", h.handleTTS)

	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleListVoices(w http.ResponseWriter, _ *http.Request) {
	voices := h.voices.List()
	if voices == nil {
		voices = []voice.Info{}
	}
	writeJSON(w, http.StatusOK, voices)
}

type addVoiceRequest struct {
	Name  string `json:"name"`
	Style string `json:"style"`
}

func (h *handler) handleAddVoice(w http.ResponseWriter, r *http.Request) {
	var req addVoiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.voices.AddCustom(req.Name, req.Style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "custom voice added", slog.String("id", v.ID), slog.String("name", v.DisplayName))

	writeJSON(w, http.StatusCreated, voice.Info{
		ID:     v.ID,
		Name:   v.DisplayName,
		Gender: voice.GenderCustom,
		Style:  v.StyleText,
		Custom: true,
	})
}

type voiceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func describeVoice(v voice.Voice) voiceResponse {
	switch v := v.(type) {
	case voice.StandardVoice:
		return voiceResponse{ID: v.ID, Name: v.Name()}
	case voice.ClonedVoice:
		return voiceResponse{ID: v.ID, Name: v.Name()}
	default:
		return voiceResponse{Name: v.Name()}
	}
}

func (h *handler) handleSelectedVoice(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, describeVoice(h.gen.Selected()))
}

type selectVoiceRequest struct {
	ID string `json:"id"`
}

func (h *handler) handleSelectVoice(w http.ResponseWriter, r *http.Request) {
	var req selectVoiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.voices.Lookup(req.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.gen.SelectVoice(v)
	writeJSON(w, http.StatusOK, describeVoice(v))
}

// generateRequest is the body of POST /generate and POST /tts.
type generateRequest struct {
	Text         string         `json:"text"`
	Voice        string         `json:"voice"`
	Emotions     map[string]int `json:"emotions"`
	Speed        *int           `json:"speed"`
	Description  string         `json:"description"`
	OmitBaseline bool           `json:"omit_baseline"`
}

// toRequest resolves the voice and style; the returned status is the HTTP
// code to use when err is non-nil.
func (h *handler) toRequest(req generateRequest) (tts.Request, int, error) {
	out := tts.Request{Style: voice.DefaultStyle()}

	if req.Voice != "" {
		v, err := h.voices.Lookup(req.Voice)
		if err != nil {
			return out, http.StatusNotFound, err
		}
		out.Voice = v
	}

	if len(req.Emotions) > 0 {
		out.Style.Emotions = make(map[voice.Emotion]int, len(req.Emotions))
		for name, level := range req.Emotions {
			e, err := voice.ParseEmotion(name)
			if err != nil {
				return out, http.StatusBadRequest, err
			}
			out.Style.Emotions[e] = level
		}
	}

	if req.Speed != nil {
		out.Style.Speed = *req.Speed
	}
	out.Style.Description = req.Description
	out.Style.OmitBaseline = req.OmitBaseline

	return out, 0, nil
}

type generateResponse struct {
	GenerationID string `json:"generation_id"`
	Epoch        uint64 `json:"epoch"`
	Voice        string `json:"voice"`
}

func (h *handler) start(w http.ResponseWriter, r *http.Request) (*tts.Generation, bool) {
	var body generateRequest
	if !h.decode(w, r, &body) {
		return nil, false
	}

	req, status, err := h.toRequest(body)
	if err != nil {
		writeError(w, status, err.Error())
		return nil, false
	}

	gen, err := h.gen.Start(body.Text, req)
	if err != nil {
		if errors.Is(err, tts.ErrValidation) {
			writeError(w, http.StatusBadRequest, tts.UserMessage(err))
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	h.log.InfoContext(r.Context(), "generation submitted",
		slog.Uint64("epoch", gen.Epoch()),
		slog.String("voice", gen.VoiceName()),
		slog.Int("text_len", len([]rune(body.Text))),
	)

	return gen, true
}

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	gen, ok := h.start(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusAccepted, generateResponse{
		GenerationID: gen.ID(),
		Epoch:        gen.Epoch(),
		Voice:        gen.VoiceName(),
	})
}

func (h *handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.gen.Cancel()

	st := h.gen.Status()
	h.log.InfoContext(r.Context(), "generation cancelled", slog.Uint64("epoch", st.Epoch))
	writeJSON(w, http.StatusOK, map[string]any{"epoch": st.Epoch, "state": st.State})
}

type statusResponse struct {
	State        tts.State `json:"state"`
	Message      string    `json:"message,omitempty"`
	Error        string    `json:"error,omitempty"`
	Epoch        uint64    `json:"epoch"`
	GenerationID string    `json:"generation_id,omitempty"`
	Segment      int       `json:"segment,omitempty"`
	Total        int       `json:"total,omitempty"`
	Recording    *struct {
		Voice      string `json:"voice"`
		DurationMS int64  `json:"duration_ms"`
		Frames     int    `json:"frames"`
	} `json:"recording,omitempty"`
}

func (h *handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := h.gen.Status()
	resp := statusResponse{
		State:        st.State,
		Message:      st.Message,
		Epoch:        st.Epoch,
		GenerationID: st.GenerationID,
		Segment:      st.Segment,
		Total:        st.Total,
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}

	if rec := h.gen.Recording(); rec != nil {
		resp.Recording = &struct {
			Voice      string `json:"voice"`
			DurationMS int64  `json:"duration_ms"`
			Frames     int    `json:"frames"`
		}{
			Voice:      rec.VoiceName,
			DurationMS: rec.Buffer.Duration().Milliseconds(),
			Frames:     rec.Buffer.Frames(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleDismissError(w http.ResponseWriter, _ *http.Request) {
	h.gen.DismissError()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleRecording(w http.ResponseWriter, r *http.Request) {
	rec := h.gen.Recording()
	if rec == nil {
		writeError(w, http.StatusNotFound, "no recording available")
		return
	}

	h.writeWAV(w, r, rec.Buffer, rec.VoiceName)
}

func (h *handler) handleDiscard(w http.ResponseWriter, _ *http.Request) {
	h.gen.Discard()
	w.WriteHeader(http.StatusNoContent)
}

// handleTTS generates synchronously and streams the WAV back. It shares the
// orchestrator, so it supersedes any generation in flight and is itself
// superseded by a later submission.
func (h *handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	gen, ok := h.start(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	buf, err := gen.Wait(ctx)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			// Only this request's own generation is cancelled; a newer
			// submission that superseded it keeps running.
			cancelled := h.gen.CancelGeneration(gen)
			h.log.WarnContext(r.Context(), "synthesis timed out",
				slog.Uint64("epoch", gen.Epoch()),
				slog.Bool("cancelled", cancelled),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusGatewayTimeout, "synthesis timed out")
		case errors.Is(err, tts.ErrCancelled):
			writeError(w, http.StatusConflict, "generation was cancelled or superseded")
		default:
			h.log.ErrorContext(r.Context(), "synthesis failed",
				slog.Uint64("epoch", gen.Epoch()),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, tts.UserMessage(err))
		}
		return
	}

	h.log.InfoContext(r.Context(), "synthesis complete",
		slog.Uint64("epoch", gen.Epoch()),
		slog.String("voice", gen.VoiceName()),
		slog.Int64("duration_ms", durationMS),
		slog.Int64("audio_ms", buf.Duration().Milliseconds()),
	)

	h.writeWAV(w, r, buf, gen.VoiceName())
}

func (h *handler) writeWAV(w http.ResponseWriter, r *http.Request, buf *audio.SampleBuffer, voiceName string) {
	data, err := audio.EncodeWAV(buf)
	if err != nil {
		h.log.ErrorContext(r.Context(), "encode recording", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := tts.DownloadName(h.opts.downloadPrefix, voiceName, h.opts.now())

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}

	body := http.MaxBytesReader(w, r.Body, h.opts.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", h.opts.maxBodyBytes))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func New(addr string, gen Generator, voices VoiceRegistry, opts ...Option) *Server {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return &Server{
		addr:            addr,
		handler:         NewHandler(gen, voices, opts...),
		shutdownTimeout: 30 * time.Second,
		logger:          o.logger,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("http server listening", slog.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(ctx context.Context, addr string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
