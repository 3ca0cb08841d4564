package main

import (
	"log"

	"github.com/BerylCAtieno/kicks-match/internal/a2a"
	"github.com/BerylCAtieno/kicks-match/internal/analyzer"
	"github.com/BerylCAtieno/kicks-match/internal/api"
	"github.com/BerylCAtieno/kicks-match/internal/config"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The API key is checked per request, so a missing key only warns here.
	if config.APIKey() == "" {
		log.Printf("WARN: %s is not set; /api/analyze will answer 500 until it is", config.APIKeyEnv)
	}

	settings := analyzer.GenerationSettings{
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}

	var generator analyzer.Generator
	if cfg.Transport == config.TransportSDK {
		generator = analyzer.NewSDKGenerator(cfg.BaseURL, settings, nil)
	} else {
		generator = analyzer.NewRESTGenerator(cfg.BaseURL, settings, nil)
	}

	service := analyzer.NewService(generator, config.APIKey, cfg.UpstreamTimeout)

	router, err := api.NewRouter(api.Handlers{
		Analyze: api.NewAnalyzeHandler(service, cfg.MaxUploadBytes),
		// base64 inflates the photo by a third, plus JSON-RPC framing
		A2A: a2a.NewA2AHandler(service, cfg.MaxUploadBytes*2),
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	log.Printf("Kicks Match starting on port %s (model=%s, transport=%s)", cfg.Port, cfg.Model, cfg.Transport)
	log.Printf("Upload page available at: http://localhost:%s/", cfg.Port)
	log.Printf("Analyze endpoint available at: http://localhost:%s/api/analyze", cfg.Port)
	log.Printf("A2A endpoint available at: http://localhost:%s/a2a/analyze", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
