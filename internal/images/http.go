package images

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Airpyk-98/Python-Image-Gen/internal/compress"
	"github.com/Airpyk-98/Python-Image-Gen/internal/runner"
	"github.com/Airpyk-98/Python-Image-Gen/internal/store"
)

// Handler orquestra as rotas de geração e entrega de imagens.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/execute-plot", h.handleExecutePlot)
	r.Get("/images/{filename}", h.handleGetImage)
}

type executePlotRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleExecutePlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req executePlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "corpo JSON inválido")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "campo code obrigatório")
		return
	}

	url, err := h.service.Produce(ctx, req.Code)
	if err != nil {
		h.count("produce", produceStatus(err))
		// A mensagem da causa é repassada de propósito: a
		// transparência ajuda quem está depurando o código enviado.
		switch {
		case errors.Is(err, runner.ErrNoImage):
			writeError(w, http.StatusBadRequest, "NO_IMAGE",
				"código executado, mas nenhuma imagem foi produzida")
		case errors.Is(err, compress.ErrDecode):
			writeError(w, http.StatusInternalServerError, "COMPRESSION", err.Error())
		case errors.Is(err, store.ErrWrite):
			writeError(w, http.StatusInternalServerError, "STORAGE", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "EXECUTION", err.Error())
		}
		return
	}

	h.count("produce", "ok")
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) handleGetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "filename")

	data, contentType, err := h.service.Retrieve(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.count("retrieve", "not_found")
			writeError(w, http.StatusNotFound, "NOT_FOUND",
				"imagem não encontrada ou expirada")
			return
		}
		h.count("retrieve", "error")
		log.Ctx(ctx).Error().Err(err).Str("file", name).Msg("falha ao ler imagem")
		writeError(w, http.StatusInternalServerError, "STORAGE", "falha ao ler imagem")
		return
	}

	h.count("retrieve", "ok")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) count(op, status string) {
	c := h.service.collector
	if c == nil {
		return
	}
	switch op {
	case "produce":
		c.ImagesProduced.WithLabelValues(status).Inc()
	case "retrieve":
		c.ImagesServed.WithLabelValues(status).Inc()
	}
}

func produceStatus(err error) string {
	switch {
	case errors.Is(err, runner.ErrNoImage):
		return "no_image"
	case errors.Is(err, compress.ErrDecode):
		return "compression_error"
	case errors.Is(err, store.ErrWrite):
		return "storage_error"
	default:
		return "execution_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
