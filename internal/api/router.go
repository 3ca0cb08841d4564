package api

import (
	"fmt"
	"net/http"

	"github.com/BerylCAtieno/kicks-match/internal/a2a"
	"github.com/BerylCAtieno/kicks-match/internal/web"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Analyze *AnalyzeHandler
	A2A     *a2a.A2AHandler
}

func NewRouter(handlers Handlers) (*gin.Engine, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger(), JSONRecovery(), RequestLoggingMiddleware())
	router.SetHTMLTemplate(templates)

	// Upload UI
	router.GET("/", HandleIndex)
	router.StaticFS("/static", http.FS(web.Static()))

	// Analysis endpoint
	router.POST("/api/analyze", handlers.Analyze.HandleAnalyze)

	// Agent endpoints
	router.GET("/.well-known/agent.json", handlers.A2A.ServeAgentCard)
	router.POST("/a2a/analyze", handlers.A2A.HandleAnalyze)

	router.GET("/health", HandleHealth)

	return router, nil
}
