// Package server exposes the handler as a notification webhook.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/event"

	"github.com/gin-gonic/gin"
)

const maxPayloadBytes = 1 << 20

// Invoker is the part of the handler the webhook needs.
type Invoker interface {
	Handle(ctx context.Context, raw []byte) domain.Result
	HandleNotification(ctx context.Context, n event.Notification) domain.Outcome
}

type batchResponse struct {
	Results []domain.Result `json:"results"`
}

// NewRouter builds the webhook router. metrics may be nil.
func NewRouter(invoker Invoker, metrics http.Handler, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	router.POST("/events", func(c *gin.Context) {
		raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, domain.Result{
				StatusCode: http.StatusRequestEntityTooLarge,
				Body:       err.Error(),
			})
			return
		}

		if c.Query("split") != "true" {
			result := invoker.Handle(c.Request.Context(), raw)
			c.JSON(result.StatusCode, result)
			return
		}

		n, err := event.Decode(raw)
		if err != nil || len(n.Records) == 0 {
			result := invoker.Handle(c.Request.Context(), raw)
			c.JSON(result.StatusCode, result)
			return
		}

		status := http.StatusOK
		resp := batchResponse{Results: make([]domain.Result, 0, len(n.Records))}
		for _, single := range n.Split() {
			result := invoker.HandleNotification(c.Request.Context(), single).Result()
			if result.StatusCode != http.StatusOK {
				status = http.StatusInternalServerError
			}
			resp.Results = append(resp.Results, result)
		}

		c.JSON(status, resp)
	})

	return router
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.InfoContext(c.Request.Context(), "Request is processed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"latencySeconds", time.Since(start).Seconds())
	}
}
