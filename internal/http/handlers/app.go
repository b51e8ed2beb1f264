package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"artify/internal/domain"
	"artify/internal/generate"
	"artify/internal/infra"
	"artify/internal/providers/prompt"
	"artify/internal/session"
)

// ImageService turns a validated request into a finished image.
type ImageService interface {
	Generate(ctx context.Context, req domain.GenerationRequest, requestID string) (*generate.Result, error)
}

type App struct {
	Images   ImageService
	Enhancer prompt.Enhancer
	Sessions *session.Store
	Logger   *infra.Logger

	page *template.Template
}

func NewApp(images ImageService, enhancer prompt.Enhancer, sessions *session.Store, logger *infra.Logger) *App {
	if enhancer == nil {
		enhancer = prompt.NewStaticEnhancer()
	}
	if sessions == nil {
		sessions = session.NewStore(0)
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{
		Images:   images,
		Enhancer: enhancer,
		Sessions: sessions,
		Logger:   logger,
		page:     pageTemplate,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Error: kind, Message: message})
}
