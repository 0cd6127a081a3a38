package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/DimaSavosin/DrawAndGuess/internal/config"
	"github.com/DimaSavosin/DrawAndGuess/internal/game"
	"github.com/DimaSavosin/DrawAndGuess/internal/transport"
	"github.com/DimaSavosin/DrawAndGuess/internal/words"
	"github.com/DimaSavosin/DrawAndGuess/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	bank, err := words.LoadBank(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("no words available for the game")
	}
	log.Info().Int("words", bank.Len()).Msg("word bank loaded")

	registry := game.NewRegistry(log)
	lobbies := game.NewDirectory(registry, bank, cfg.RoundTimeout, log)
	worker := game.NewWorker(registry, lobbies, log)

	ln, err := net.Listen("tcp", cfg.TCPAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.TCPAddr).Msg("tcp listen failed")
	}
	go transport.ServeTCP(ln, worker.Handle, log)
	log.Info().Str("addr", cfg.TCPAddr).Msg("tcp server listening")

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", transport.WSHandler(worker.Handle))

	app.Get("/api/lobbies", func(c *fiber.Ctx) error {
		return c.JSON(lobbies.Snapshot())
	})

	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	_ = ln.Close()
	_ = app.Shutdown()
}
