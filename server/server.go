package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/djelia-org/djelia-go/processor"
)

// maxUploadSize bounds audio uploads.
const maxUploadSize = 50 * 1024 * 1024

type Server struct {
	app       *fiber.App
	processor *processor.Processor
	gatherer  prometheus.Gatherer
}

// New builds the gateway. gatherer backs GET /metrics.
func New(p *processor.Processor, gatherer prometheus.Gatherer) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "djelia-gateway",
		BodyLimit: maxUploadSize,
	})

	server := &Server{
		app:       app,
		processor: p,
		gatherer:  gatherer,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(port string) error {
	log.Info().Str("port", port).Msg("Starting Djelia gateway")

	return s.app.Listen(":"+port, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down Djelia gateway")
	return s.app.Shutdown()
}
