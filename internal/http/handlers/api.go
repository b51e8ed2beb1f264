package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"artify/internal/domain"
	"artify/internal/middleware"
)

const maxAPIBody = 1 << 20

type imageRequest struct {
	Prompt  string `json:"prompt"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type improveRequest struct {
	Prompt string `json:"prompt"`
}

// CreateImage is the JSON counterpart of the form: it answers with PNG bytes.
func (a *App) CreateImage(w http.ResponseWriter, r *http.Request) {
	var body imageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody)).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	width, height := body.Width, body.Height
	if width == 0 && height == 0 {
		var err error
		if width, height, err = domain.ParseSize(body.Size); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}
	tier, err := domain.ParseQualityTier(body.Quality)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	req, err := domain.NewGenerationRequest(body.Prompt, width, height, tier)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res, err := a.Images.Generate(r.Context(), req, middleware.RequestIDFromContext(r.Context()))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	case errors.Is(err, domain.ErrGenerationFailed):
		a.error(w, http.StatusBadGateway, "generation_failed", "no image provider produced an image")
		return
	default:
		a.Logger.Error().Err(err).Msg("create image")
		a.error(w, http.StatusInternalServerError, "internal", "failed to produce image")
		return
	}

	w.Header().Set("X-Image-Provider", res.Provider)
	w.Header().Set("X-Image-Sequence", res.Sequence)
	writeImage(w, res.PNG, res.Filename)
}

// ImprovePrompt is the JSON counterpart of the improve action.
func (a *App) ImprovePrompt(w http.ResponseWriter, r *http.Request) {
	var body improveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody)).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	improved, err := a.Enhancer.Enhance(r.Context(), body.Prompt)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, improveRequest{Prompt: improved})
}
