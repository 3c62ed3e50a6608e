package commands

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/gateway"
	"github.com/diogo/concierge/internal/logger"
	"github.com/diogo/concierge/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		integration string
		bot         string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local chatbot gateway",
		Long: `Serve the chatbot contract on a local address, so the client can be
pointed at it with --endpoint http://<addr>/chatbot.

The "lambda" integration answers like API Gateway in front of a Lambda
function without proxy integration: a 200 whose body field is a JSON string.
The "proxy" integration passes the status code and body through.

The "echo" bot repeats the message back; "lex" forwards it to Amazon Lex
using the default AWS credential chain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gcfg := a.cfg.Gateway
			if addr != "" {
				gcfg.Addr = addr
			}
			if integration != "" {
				gcfg.Integration = integration
			}
			if bot != "" {
				gcfg.Bot = bot
			}

			check := a.cfg
			check.Gateway = gcfg
			if err := check.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// the server owns the terminal, so log there
			a.teardown()
			if _, err := logger.Setup(logger.Options{Verbose: a.cfg.Verbose, Console: a.deps.Err}); err != nil {
				return err
			}
			if !a.cfg.Verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			b, err := gateway.NewBot(cmd.Context(), gcfg)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			srv := server.New(gcfg, gateway.NewHandler(b))
			fmt.Fprintf(a.deps.Out, "Gateway (%s, %s bot) on http://%s%s\n", gcfg.Integration, gcfg.Bot, gcfg.Addr, server.ChatbotPath)
			return srv.Run(cmd.Context())
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides gateway.addr)")
	serveCmd.Flags().StringVar(&integration, "integration", "",
		fmt.Sprintf("Response shape: %s or %s", config.IntegrationLambda, config.IntegrationProxy))
	serveCmd.Flags().StringVar(&bot, "bot", "", fmt.Sprintf("Bot backend: %s or %s", config.BotEcho, config.BotLex))

	return serveCmd
}
