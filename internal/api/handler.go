package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/rs/zerolog"
)

const Version = "1.0.0"

// Handler answers questions against one corpus built at startup.
type Handler struct {
	service *qa.Service
	corpus  *corpus.Corpus
	logger  *zerolog.Logger
}

func NewHandler(service *qa.Service, c *corpus.Corpus, logger *zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		corpus:  c,
		logger:  logger,
	}
}

// POST /ask and POST /api/v1/ask
// Body: AskRequest
// Returns: AskResponse
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	var askRequest AskRequest
	if err := req.ReadEntity(&askRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("query", askRequest.Query).
		Int("k", askRequest.K).
		Msg("Answer question")

	answer, err := h.service.AskK(req.Request.Context(), h.corpus, askRequest.Query, askRequest.K)
	if err != nil {
		status := middleware.StatusFor(err)
		h.logger.Error().Err(err).Int("status", status).Msg("Failed to answer question")
		middleware.HandleError(resp, err, status)
		return
	}

	sources := make([]Source, len(answer.Sources))
	for i, m := range answer.Sources {
		sources[i] = Source{Position: m.Position, Distance: m.Distance}
	}

	resp.WriteHeaderAndEntity(http.StatusOK, AskResponse{
		Answer:  answer.Text,
		Sources: sources,
	})
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Chunks:  h.corpus.Len(),
	})
}
