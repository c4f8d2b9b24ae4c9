package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/document"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/session"
	"github.com/rs/zerolog"
)

const (
	SessionCookie         = "docqa_session"
	DefaultMaxUploadBytes = 10 << 20
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

type pageData struct {
	Document string
	Chunks   int
	Question string
	Notice   string
	Error    string
	Answer   *qa.Answer
}

// Handler serves the upload and question form. Each browser session owns its corpus.
type Handler struct {
	service        *qa.Service
	store          session.Store
	maxUploadBytes int64
	logger         *zerolog.Logger
}

func NewHandler(service *qa.Service, store session.Store, maxUploadBytes int64, logger *zerolog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	return &Handler{
		service:        service,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// GET /
func (h *Handler) Index(req *restful.Request, resp *restful.Response) {
	id := h.sessionID(req, resp)

	data := pageData{}
	if c, err := h.store.Get(req.Request.Context(), id); err == nil {
		data.Document, data.Chunks = c.Source().Document, c.Len()
	}

	h.render(resp, http.StatusOK, data)
}

// POST /upload
// Form: multipart "document"
func (h *Handler) Upload(req *restful.Request, resp *restful.Response) {
	id := h.sessionID(req, resp)
	ctx := req.Request.Context()

	req.Request.Body = http.MaxBytesReader(resp.ResponseWriter, req.Request.Body, h.maxUploadBytes+1<<20)

	file, header, err := req.Request.FormFile("document")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(req, resp, id, fmt.Errorf("%w: upload exceeds %d bytes", document.ErrTooLarge, h.maxUploadBytes), 0)
			return
		}
		h.fail(req, resp, id, fmt.Errorf("no document uploaded: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	doc, err := document.LoadReader(header.Filename, file, h.maxUploadBytes)
	if err != nil {
		h.fail(req, resp, id, err, 0)
		return
	}

	c, err := h.service.Index(ctx, doc)
	if err != nil {
		h.fail(req, resp, id, err, 0)
		return
	}

	if err := h.store.Put(ctx, id, c); err != nil {
		h.fail(req, resp, id, err, 0)
		return
	}

	h.logger.Info().
		Str("session", id).
		Str("document", doc.Name).
		Int("chunks", c.Len()).
		Msg("Session document replaced")

	h.render(resp, http.StatusOK, pageData{
		Document: doc.Name,
		Chunks:   c.Len(),
		Notice:   "Document processed and indexed!",
	})
}

// POST /ask
// Form: "question"
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	id := h.sessionID(req, resp)
	ctx := req.Request.Context()
	question := req.Request.FormValue("question")

	c, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			err = fmt.Errorf("%w: upload a document first", err)
		}
		h.fail(req, resp, id, err, 0)
		return
	}

	answer, err := h.service.Ask(ctx, c, question)
	if err != nil {
		h.failWithCorpus(resp, id, c, question, err)
		return
	}

	h.render(resp, http.StatusOK, pageData{
		Document: c.Source().Document,
		Chunks:   c.Len(),
		Question: answer.Question,
		Answer:   answer,
	})
}

// sessionID returns the caller's session id, issuing a new cookie when it is missing or malformed.
func (h *Handler) sessionID(req *restful.Request, resp *restful.Response) string {
	if cookie, err := req.Request.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(resp.ResponseWriter, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// fail renders err with status, or the mapped status when status is 0.
// The session keeps whatever corpus it already had.
func (h *Handler) fail(req *restful.Request, resp *restful.Response, id string, err error, status int) {
	if status == 0 {
		status = middleware.StatusFor(err)
	}

	h.logger.Error().Err(err).Str("session", id).Int("status", status).Msg("Form request failed")

	data := pageData{Error: err.Error()}
	if c, getErr := h.store.Get(req.Request.Context(), id); getErr == nil {
		data.Document, data.Chunks = c.Source().Document, c.Len()
	}

	h.render(resp, status, data)
}

func (h *Handler) failWithCorpus(resp *restful.Response, id string, c *corpus.Corpus, question string, err error) {
	status := middleware.StatusFor(err)
	h.logger.Error().Err(err).Str("session", id).Int("status", status).Msg("Form request failed")

	h.render(resp, status, pageData{
		Document: c.Source().Document,
		Chunks:   c.Len(),
		Question: question,
		Error:    err.Error(),
	})
}

func (h *Handler) render(resp *restful.Response, status int, data pageData) {
	resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	resp.WriteHeader(status)

	if err := page.Execute(resp, data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render page")
	}
}
