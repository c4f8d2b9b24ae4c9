package api

import (
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/api/middleware"
)

const OpenAPIPath = "/api/v1/openapi.json"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.Route(askRoute(ws, "/ask", handler))
	container.Add(ws)

	// Unversioned path kept for existing clients.
	compat := new(restful.WebService)
	compat.
		Path("/ask").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)
	compat.Route(askRoute(compat, "", handler))
	container.Add(compat)
}

func askRoute(ws *restful.WebService, path string, handler *Handler) *restful.RouteBuilder {
	return ws.POST(path).
		To(handler.Ask).
		Doc("Answer a question about the loaded document").
		Metadata(restfulspec.KeyOpenAPITags, []string{"ask"}).
		Reads(AskRequest{}).
		Writes(AskResponse{}).
		Returns(200, "OK", AskResponse{}).
		Returns(400, "Bad Request", middleware.ErrorResponse{}).
		Returns(422, "Invalid k", middleware.ErrorResponse{}).
		Returns(500, "Internal Server Error", middleware.ErrorResponse{}).
		Returns(502, "Generation Service Error", middleware.ErrorResponse{})
}

// RegisterOpenAPI serves the OpenAPI document for every web service registered so far.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       OpenAPIPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}

	container.Add(restfulspec.NewOpenAPIService(config))
}

// RegisterStatic serves dir at the root path. Empty dir disables it.
func RegisterStatic(container *restful.Container, dir string) {
	if dir == "" {
		return
	}
	container.Handle("/", http.FileServer(http.Dir(dir)))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Document QA API",
			Description: "Retrieval augmented question answering over one document",
			Version:     Version,
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "ask", Description: "Question answering"}},
	}
}
