package handlers

import (
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"artify/internal/domain"
	"artify/internal/imaging"
	"artify/internal/middleware"
	"artify/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageText struct {
	Title        string
	PromptLabel  string
	SizeLabel    string
	QualityLabel string
	Generate     string
	Improve      string
	Download     string
}

type qualityOption struct {
	Label string
	Tier  domain.QualityTier
}

type pageImage struct {
	Src      template.URL
	Caption  string
	Provider string
	Sequence string
}

type pageData struct {
	Locale          string
	Text            pageText
	Prompt          string
	Sizes           []domain.SizePreset
	SelectedSize    string
	Qualities       []qualityOption
	SelectedQuality string
	Image           *pageImage
	Error           string
}

func (a *App) newPage(r *http.Request, st session.State) pageData {
	locale := middleware.LocaleFromContext(r.Context())
	p := printer(locale)
	data := pageData{
		Locale: locale,
		Text: pageText{
			Title:        p.Sprintf(msgTitle),
			PromptLabel:  p.Sprintf(msgPromptLabel),
			SizeLabel:    p.Sprintf(msgSizeLabel),
			QualityLabel: p.Sprintf(msgQualityLabel),
			Generate:     p.Sprintf(msgGenerate),
			Improve:      p.Sprintf(msgImprove),
			Download:     p.Sprintf(msgDownload),
		},
		Prompt:          st.Prompt,
		Sizes:           domain.SizePresets,
		SelectedSize:    domain.SizePresets[0].Label,
		SelectedQuality: domain.QualityLabels[0].Label,
	}
	for _, q := range domain.QualityLabels {
		data.Qualities = append(data.Qualities, qualityOption{Label: q.Label, Tier: q.Tier})
	}
	if img := st.LastImage; img != nil {
		data.Image = &pageImage{
			Src:      template.URL("data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.PNG)),
			Caption:  p.Sprintf(msgCaption, img.Prompt),
			Provider: img.Provider,
			Sequence: img.Sequence,
		}
	}
	return data
}

func (a *App) render(w http.ResponseWriter, code int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := a.page.Execute(w, data); err != nil {
		a.Logger.Error().Err(err).Msg("render page")
	}
}

func (a *App) state(r *http.Request) session.State {
	st, _ := a.Sessions.Get(middleware.SessionIDFromContext(r.Context()))
	return st
}

// Index renders the form together with the session's last image.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, a.newPage(r, a.state(r)))
}

// Generate handles the form submission.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())
	p := printer(middleware.LocaleFromContext(r.Context()))
	if err := r.ParseForm(); err != nil {
		data := a.newPage(r, a.state(r))
		data.Error = p.Sprintf(msgInvalid, err.Error())
		a.render(w, http.StatusBadRequest, data)
		return
	}
	promptText := r.PostFormValue("prompt")
	sizeLabel := r.PostFormValue("size")
	qualityLabel := r.PostFormValue("quality")

	fail := func(code int, msg string) {
		st := a.state(r)
		st.Prompt = promptText
		data := a.newPage(r, st)
		data.Error = msg
		data.SelectedSize, data.SelectedQuality = selected(sizeLabel, data.SelectedSize), selected(qualityLabel, data.SelectedQuality)
		a.render(w, code, data)
	}

	req, err := parseFormRequest(promptText, sizeLabel, qualityLabel)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPrompt) {
			fail(http.StatusBadRequest, p.Sprintf(msgEmptyPrompt))
			return
		}
		fail(http.StatusBadRequest, p.Sprintf(msgInvalid, err.Error()))
		return
	}

	res, err := a.Images.Generate(r.Context(), req, middleware.RequestIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			fail(http.StatusBadRequest, p.Sprintf(msgInvalid, err.Error()))
			return
		}
		fail(http.StatusBadGateway, p.Sprintf(msgFailed))
		return
	}

	st := a.Sessions.Update(sid, func(st *session.State) {
		st.Prompt = req.Prompt
		st.LastImage = &session.Image{
			PNG:      res.PNG,
			Prompt:   res.Prompt,
			Provider: res.Provider,
			Sequence: res.Sequence,
			Filename: res.Filename,
			MIME:     res.MIME,
		}
	})
	data := a.newPage(r, st)
	data.SelectedSize, data.SelectedQuality = selected(sizeLabel, data.SelectedSize), selected(qualityLabel, data.SelectedQuality)
	a.render(w, http.StatusOK, data)
}

// Improve rewrites the prompt in place and re-renders the form.
func (a *App) Improve(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())
	p := printer(middleware.LocaleFromContext(r.Context()))
	if err := r.ParseForm(); err != nil {
		data := a.newPage(r, a.state(r))
		data.Error = p.Sprintf(msgInvalid, err.Error())
		a.render(w, http.StatusBadRequest, data)
		return
	}
	improved, err := a.Enhancer.Enhance(r.Context(), r.PostFormValue("prompt"))
	if err != nil {
		data := a.newPage(r, a.state(r))
		data.Error = p.Sprintf(msgEmptyPrompt)
		a.render(w, http.StatusBadRequest, data)
		return
	}
	st := a.Sessions.Update(sid, func(st *session.State) { st.Prompt = improved })
	a.render(w, http.StatusOK, a.newPage(r, st))
}

// Download streams the session's last image as an attachment.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	st := a.state(r)
	if st.LastImage == nil {
		p := printer(middleware.LocaleFromContext(r.Context()))
		http.Error(w, p.Sprintf(msgNoImage), http.StatusNotFound)
		return
	}
	writeImage(w, st.LastImage.PNG, st.LastImage.Filename)
}

func writeImage(w http.ResponseWriter, data []byte, filename string) {
	if filename == "" {
		filename = imaging.DownloadFilename
	}
	w.Header().Set("Content-Type", imaging.PNGMime)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseFormRequest(promptText, size, quality string) (domain.GenerationRequest, error) {
	width, height, err := domain.ParseSize(size)
	if err != nil {
		return domain.GenerationRequest{}, err
	}
	tier, err := domain.ParseQualityTier(quality)
	if err != nil {
		return domain.GenerationRequest{}, err
	}
	return domain.NewGenerationRequest(promptText, width, height, tier)
}

func selected(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
