package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/document"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/generator"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/index"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/retriever"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/session"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Logger logs every request after the chain has run.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
}

func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			HandleError(resp, fmt.Errorf("internal server error"), http.StatusInternalServerError)
		}
	}()

	chain.ProcessFilter(req, resp)
}

func HandleError(resp *restful.Response, err error, status int) {
	if err := resp.WriteHeaderAndEntity(status, ErrorResponse{Error: err.Error(), Status: status}); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}

// StatusFor maps pipeline errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, qa.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrUnsupportedEncoding), errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, document.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, retriever.ErrInvalidK), errors.Is(err, index.ErrEmptyCorpus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound):
		return http.StatusConflict
	case errors.Is(err, generator.ErrGenerationService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
