package main

import (
	"os"

	"github.com/dreamline/mentorlink/internal/pkg/logger"
	"github.com/dreamline/mentorlink/internal/server"
)

// @title MentorLink API
// @version 1.0
// @description Student and mentor matchmaking, chat, board and trust ratings
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Setup failures are already logged in detail by bootstrap
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
