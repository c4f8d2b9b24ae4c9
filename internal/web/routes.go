package web

import (
	"github.com/emicklei/go-restful/v3"
)

const (
	mimeHTML      = "text/html"
	mimeMultipart = "multipart/form-data"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/").
		Produces(mimeHTML)

	ws.Route(ws.GET("/").
		To(handler.Index).
		Doc("Upload and question form"))

	ws.Route(ws.POST("/upload").
		Consumes(mimeMultipart).
		To(handler.Upload).
		Doc("Replace the session document"))

	ws.Route(ws.POST("/ask").
		Consumes("application/x-www-form-urlencoded", mimeMultipart).
		To(handler.Ask).
		Doc("Answer a question about the session document"))

	container.Add(ws)
}
