package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/animal-classifier/internal/handlers"
	"github.com/Brownie44l1/animal-classifier/internal/logger"
	"github.com/Brownie44l1/animal-classifier/internal/metrics"
)

// SetupRoutes wires both front ends onto one engine. Only allowedOrigin
// may call the API cross-origin, with credentials.
func SetupRoutes(hm *handlers.HandlerManager, m *metrics.Metrics, allowedOrigin string, log *zap.SugaredLogger) (*gin.Engine, error) {
	tmpl, err := handlers.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log), m.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.SetHTMLTemplate(tmpl)

	// Server-rendered form
	r.GET("/", hm.FormHandler.Index)
	r.POST("/", hm.FormHandler.Upload)

	// JSON API for the separate front end
	r.GET("/predict", hm.APIHandler.Info)
	r.POST("/predict", hm.APIHandler.Predict)

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r, nil
}
