package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/concierge/internal/config"
	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/logger"
)

// lexAPI is the subset of the Lex runtime client the bot uses
type lexAPI interface {
	PostText(ctx context.Context, params *lexruntimeservice.PostTextInput, optFns ...func(*lexruntimeservice.Options)) (*lexruntimeservice.PostTextOutput, error)
}

// LexBot forwards utterances to an Amazon Lex (V1) bot.
type LexBot struct {
	client   lexAPI
	botName  string
	botAlias string
	// userID identifies requests that carry no session id, so they
	// share one Lex dialog for the lifetime of the process.
	userID string
	log    zerolog.Logger
}

// NewLexBot creates a LexBot using the default AWS credential chain.
func NewLexBot(ctx context.Context, cfg config.GatewayConfig) (*LexBot, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.LexRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.LexRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newLexBot(lexruntimeservice.NewFromConfig(awsCfg), cfg), nil
}

func newLexBot(client lexAPI, cfg config.GatewayConfig) *LexBot {
	return &LexBot{
		client:   client,
		botName:  cfg.LexBotName,
		botAlias: cfg.LexBotAlias,
		userID:   uuid.NewString(),
		log:      logger.For("lex"),
	}
}

// Reply sends text to Lex. NotFoundException and AccessDeniedException
// are reported as apierrors.ErrBotNotFound and apierrors.ErrAccessDenied.
func (b *LexBot) Reply(ctx context.Context, sessionID, text string) (string, error) {
	userID := sessionID
	if userID == "" {
		userID = b.userID
	}

	out, err := b.client.PostText(ctx, &lexruntimeservice.PostTextInput{
		BotName:   aws.String(b.botName),
		BotAlias:  aws.String(b.botAlias),
		UserId:    aws.String(userID),
		InputText: aws.String(text),
	})
	if err != nil {
		return "", classifyLexError(err)
	}

	b.log.Debug().
		Str("user_id", userID).
		Str("dialog_state", string(out.DialogState)).
		Str("intent", aws.ToString(out.IntentName)).
		Msg("lex replied")

	return aws.ToString(out.Message), nil
}

func classifyLexError(err error) error {
	var notFound *types.NotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", apierrors.ErrBotNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFoundException":
			return fmt.Errorf("%w: %v", apierrors.ErrBotNotFound, err)
		case "AccessDeniedException":
			return fmt.Errorf("%w: %v", apierrors.ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("lex PostText failed: %w", err)
}
