package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/amigo/internal/service"
	"github.com/w-h-a/amigo/memory"
	"github.com/w-h-a/amigo/raindrop"
	"github.com/w-h-a/amigo/transcriber"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	service *service.Memory
	stt     transcriber.Transcriber
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/save", h.Save).Methods(http.MethodPost)
	r.HandleFunc("/api/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/recent", h.Recent).Methods(http.MethodGet)
	r.HandleFunc("/api/infer", h.Infer).Methods(http.MethodPost)
	r.HandleFunc("/api/transcribe", h.Transcribe).Methods(http.MethodPost)

	r.HandleFunc("/api/smartmemory/save", h.LocalSave).Methods(http.MethodPost)
	r.HandleFunc("/api/smartmemory/list", h.LocalList).Methods(http.MethodPost)
	r.HandleFunc("/api/smartmemory/query", h.LocalQuery).Methods(http.MethodPost)
	r.HandleFunc("/api/smartmemory/infer", h.LocalInfer).Methods(http.MethodPost)

	return r
}

type saveRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
	Mood       string   `json:"mood"`
	Date       string   `json:"date"`
	Source     string   `json:"source"`
	AudioURL   string   `json:"audio_url"`
}

func (r saveRequest) input() memory.Input {
	in := memory.Input{
		Title:      r.Title,
		Content:    r.Content,
		Tags:       r.Tags,
		Categories: r.Categories,
		Mood:       r.Mood,
		Source:     r.Source,
		AudioURL:   r.AudioURL,
	}

	if date, err := time.Parse(time.RFC3339, r.Date); err == nil {
		in.Date = date
	}

	return in
}

// Save is designed to never fail from the caller's perspective: all remote
// degradation is invisible except for the provider/mock flags. Only a local
// write fault produces an error status.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	res, err := h.service.Save(r.Context(), req.input())
	if err != nil {
		slog.ErrorContext(r.Context(), "save failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	body := map[string]any{
		"ok":       true,
		"provider": res.Provider,
	}

	if res.Provider == service.ProviderRaindrop {
		body["result"] = res.Remote.Payload()
	} else {
		body["result"] = res.Item
		body["mock"] = true
	}

	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	env, err := h.service.RemoteSearch(r.Context(), q)

	h.relay(w, env, err)
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	env, err := h.service.RemoteRecent(r.Context())

	h.relay(w, env, err)
}

func (h *Handler) Infer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode           string   `json:"mode"`
		Query          string   `json:"query"`
		ContextEntries []string `json:"contextEntries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	env, err := h.service.RemoteInfer(r.Context(), req.Mode, req.Query, req.ContextEntries)

	h.relay(w, env, err)
}

func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.stt == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "transcription is not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "audio file is required"})
		return
	}
	defer file.Close()

	transcript, err := h.stt.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		slog.ErrorContext(r.Context(), "transcription failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	body := map[string]any{}
	for k, v := range transcript.Raw {
		body[k] = v
	}
	body["ok"] = true
	if _, exists := body["text"]; !exists && len(transcript.Text) > 0 {
		body["text"] = transcript.Text
	}

	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) LocalSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	item, err := h.service.SaveLocal(r.Context(), req.input())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": item, "mock": true})
}

func (h *Handler) LocalList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit int `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	items, err := h.service.List(r.Context(), req.Limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
}

func (h *Handler) LocalQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	items, err := h.service.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
}

func (h *Handler) LocalInfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode  string `json:"mode"`
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	if req.Mode == service.ModeWeeklySummary {
		digest, err := h.service.WeeklyDigest(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": digest})
		return
	}

	answer, err := h.service.Answer(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": answer})
}

// relay maps a remote envelope onto the response: 503 when raindrop is not
// configured, 502 when the call failed or the provider reported an error
// status, otherwise the provider's body as-is.
func (h *Handler) relay(w http.ResponseWriter, env raindrop.Envelope, err error) {
	if errors.Is(err, raindrop.ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": raindrop.CodeNotConfigured})
		return
	}

	if env.Failed() || env.Status >= 400 {
		writeJSON(w, http.StatusBadGateway, env.Payload())
		return
	}

	writeJSON(w, http.StatusOK, env.Payload())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func New(service *service.Memory, stt transcriber.Transcriber) *Handler {
	if service == nil {
		panic("service is required")
	}

	return &Handler{
		service: service,
		stt:     stt,
	}
}
