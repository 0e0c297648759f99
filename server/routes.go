package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.healthCheckHandler)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.app.Group("/v1")
	v1.Get("/languages", s.languagesHandler)
	v1.Post("/translate", s.translateHandler)
	v1.Post("/transcribe", s.transcribeHandler)
	v1.Post("/transcribe/stream", s.transcribeStreamHandler)
	v1.Post("/tts", s.speechHandler)
	v1.Get("/schema/:operation", s.schemaHandler)

	s.app.Get("/history/:userId", s.historyHandler)
	s.app.Delete("/history/:userId", s.clearHistoryHandler)
}
