package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/port"
)

// Generation settings for the learning assistant.
const (
	ChatTemperature     = 0.7
	ChatMaxOutputTokens = 500
)

// AssistantPersona is sent as the opening user turn of every conversation.
const AssistantPersona = `You are a helpful AI learning assistant for KARA, an AI-powered learning intelligence platform.
Your role is to help users understand:

- Course completion predictions and dropout risk analysis
- How the AI model analyzes learner behavior (time spent, videos watched, quiz scores, completion rates, device types, course categories)
- Best practices for improving course completion rates
- Interpreting prediction results (completion probability, dropout risk levels: Low >70%, Medium 40-70%, High <40%)
- Understanding factors that influence learning outcomes

Key features of KARA platform:
- AI-powered predictions using machine learning (gradient boosted classifier)
- Real-time dropout risk assessment
- Performance tracking across multiple metrics
- Support for various course categories: Programming, Business, Design, Marketing, Data Science, and Other
- Multi-device support: Desktop, Mobile, Tablet

Be friendly, concise, and focus on educational insights. If asked about technical details, explain them in simple terms.
Keep responses under 150 words unless more detail is specifically requested. Use clear examples when helpful.
If you don't know something specific about the platform, acknowledge it honestly.`

// AssistantAcknowledgement is the model turn that follows the persona.
const AssistantAcknowledgement = "Understood! I'm ready to help with KARA learning insights."

// Chat is the use case relaying a learner question to the generative model.
type Chat struct {
	completer port.ChatCompleter
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewChat creates a new Chat use case. completer may be nil when the relay
// is not configured.
func NewChat(completer port.ChatCompleter, logger *slog.Logger) *Chat {
	return &Chat{
		completer: completer,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Configured reports whether the relay has credentials.
func (uc *Chat) Configured() bool {
	return uc.completer != nil && uc.completer.Configured()
}

// Execute builds the prompt and returns the assistant's reply.
func (uc *Chat) Execute(ctx context.Context, req dto.ChatRequest) (dto.ChatResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "Chat.Execute")
	defer span.End()

	if strings.TrimSpace(req.Message) == "" {
		return dto.ChatResponse{}, &model.ValidationError{Violations: []model.FieldViolation{
			{Field: "message", Message: "must not be empty"},
		}}
	}
	if !uc.Configured() {
		span.SetStatus(codes.Error, "not configured")
		return dto.ChatResponse{}, model.ErrChatNotConfigured
	}

	reply, err := uc.completer.Complete(ctx, BuildChatPrompt(req))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream failure")
		if errors.Is(err, model.ErrUpstreamTimeout) {
			uc.logger.WarnContext(ctx, "chat upstream timed out")
		} else {
			uc.logger.ErrorContext(ctx, "chat upstream failed", "error", err)
		}
		return dto.ChatResponse{}, fmt.Errorf("failed to complete chat: %w", err)
	}

	return dto.ChatResponse{Response: reply}, nil
}

// BuildChatPrompt assembles the persona, the last ChatHistoryLimit history
// turns and the new message. Roles other than "user" are sent as "model".
func BuildChatPrompt(req dto.ChatRequest) model.ChatPrompt {
	history := req.History
	if len(history) > model.ChatHistoryLimit {
		history = history[len(history)-model.ChatHistoryLimit:]
	}

	turns := make([]model.ChatTurn, 0, len(history)+3)
	turns = append(turns,
		model.ChatTurn{Role: model.ChatRoleUser, Content: AssistantPersona},
		model.ChatTurn{Role: model.ChatRoleModel, Content: AssistantAcknowledgement},
	)
	for _, m := range history {
		role := model.ChatRoleModel
		if m.Role == model.ChatRoleUser {
			role = model.ChatRoleUser
		}
		turns = append(turns, model.ChatTurn{Role: role, Content: m.Content})
	}
	turns = append(turns, model.ChatTurn{Role: model.ChatRoleUser, Content: req.Message})

	return model.ChatPrompt{
		Turns:           turns,
		Temperature:     ChatTemperature,
		MaxOutputTokens: ChatMaxOutputTokens,
	}
}
