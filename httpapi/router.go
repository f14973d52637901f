// Package httpapi exposes the service over HTTP with gin. Handlers only move
// bytes between the wire and service.Service.
package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viant/vecserve/service"
)

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Options configures the router.
type Options struct {
	MaxBodyBytes int64
	Logger       *slog.Logger
}

type api struct {
	svc     *service.Service
	maxBody int64
}

// NewRouter registers the inference and health endpoints.
func NewRouter(svc *service.Service, opts Options) *gin.Engine {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &api{svc: svc, maxBody: opts.MaxBodyBytes}

	router := gin.New()
	router.Use(requestID(), accessLog(opts.Logger), recovery(opts.Logger))

	router.POST("/invocations", a.invoke)
	router.GET("/ping", a.health)

	v1 := router.Group("/v1")
	{
		v1.POST("/search", a.invoke)
	}
	router.GET("/healthz", a.health)
	return router
}

func (a *api) invoke(c *gin.Context) {
	if !isJSON(c.GetHeader("Content-Type")) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "content type must be application/json"})
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, a.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}
	resp := a.svc.Handle(c.Request.Context(), body)
	c.Data(resp.Status, "application/json", resp.Body)
}

func (a *api) health(c *gin.Context) {
	state := a.svc.State()
	if state == service.Ready {
		c.JSON(http.StatusOK, gin.H{"status": state.String()})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": state.String()})
}

func isJSON(contentType string) bool {
	media, _, err := mime.ParseMediaType(contentType)
	return err == nil && media == "application/json"
}
