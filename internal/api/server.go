package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Server is the HTTP surface over the retrieval usecases.
type Server struct {
	app        *fiber.App
	listenAddr string
	log        *slog.Logger
}

func NewServer(addr string, handler *Handler, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Get("/health", handler.HandleHealth)
	app.Post("/search", handler.HandleSearch)
	app.Post("/rag", handler.HandleRAG)

	return &Server{
		app:        app,
		listenAddr: addr,
		log:        log,
	}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.log.Info("server listening", "addr", s.listenAddr)
	return s.app.Listen(s.listenAddr)
}

func (s *Server) Shutdown() error {
	s.log.Info("server stopped")
	return s.app.Shutdown()
}
