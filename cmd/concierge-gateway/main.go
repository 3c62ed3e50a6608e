// Command concierge-gateway is the chatbot Lambda function: it answers
// POST /chatbot events with the status and body contract the client expects.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/gateway"
	"github.com/diogo/concierge/internal/logger"
)

func main() {
	dotenvErr := config.LoadDotEnv(".env")
	cfg, cfgErr := config.FromEnv()

	if _, err := logger.Setup(logger.Options{JSON: os.Stdout, Verbose: cfg.Verbose}); err != nil {
		os.Exit(1)
	}
	log := logger.For("lambda")

	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("ignoring .env")
	}
	if cfgErr != nil {
		log.Fatal().Err(cfgErr).Msg("failed to load configuration")
	}

	bot, err := gateway.NewBot(context.Background(), cfg.Gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	log.Info().Str("bot", cfg.Gateway.Bot).Msg("gateway ready")

	lambda.Start(gateway.NewHandler(bot).HandleEvent)
}
