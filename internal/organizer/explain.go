// internal/organizer/explain.go
package organizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ExplanationGenerator produces a human-readable rationale for a
// learned pattern. Explanations are display metadata only: matching
// and scoring never consult them, and a failed or absent generator
// never blocks the engine.
type ExplanationGenerator interface {
	Explain(ctx context.Context, p *OrganizationPattern) (string, error)
}

// NoopExplainer generates nothing; the built-in description is used.
type NoopExplainer struct{}

// Explain implements ExplanationGenerator.
func (NoopExplainer) Explain(context.Context, *OrganizationPattern) (string, error) {
	return "", nil
}

// OpenAIExplainer asks a chat model for a one-sentence rationale.
type OpenAIExplainer struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewOpenAIExplainer creates an explainer backed by the OpenAI API.
func NewOpenAIExplainer(apiKey, model string, maxTokens int, logger *zap.Logger) *OpenAIExplainer {
	if model == "" {
		model = openai.GPT4oMini
	}
	if maxTokens == 0 {
		maxTokens = 80
	}
	return &OpenAIExplainer{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Explain implements ExplanationGenerator.
func (e *OpenAIExplainer) Explain(ctx context.Context, p *OrganizationPattern) (string, error) {
	prompt := fmt.Sprintf(`A file organization system learned this rule from a user's behavior:
%s

Write one short sentence, addressed to the user, explaining why files like this are suggested to go into the %q folder. No preamble.`,
		describePattern(p), p.DestinationFolderName)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// explainAsync requests an explanation for a freshly created pattern
// off the hot path and attaches it best-effort.
func (s *Service) explainAsync(p *OrganizationPattern) {
	if _, ok := s.explainer.(NoopExplainer); ok {
		return
	}
	cp := p.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		text, err := s.explainer.Explain(ctx, cp)
		if err != nil {
			s.logger.Warn("explanation generation failed",
				zap.String("pattern_id", cp.ID), zap.Error(err))
			return
		}
		if text == "" {
			return
		}
		if err := s.store.SetExplanation(ctx, cp.OwnerID, cp.ID, text); err != nil {
			s.logger.Warn("failed to store explanation",
				zap.String("pattern_id", cp.ID), zap.Error(err))
		}
	}()
}

// describePattern renders a plain-language description of the rule,
// used when no AI explanation is available.
func describePattern(p *OrganizationPattern) string {
	var cond string
	t := p.Trigger
	switch p.Kind {
	case KindSourceFolderToDest:
		cond = "files you move out of this folder"
		if t.Extension != "" {
			cond = fmt.Sprintf("%s files you move out of this folder", strings.ToUpper(t.Extension))
		}
	case KindFileNamePatternToFolder:
		cond = "files with this name shape"
	case KindFileTypeToFolder:
		switch {
		case t.Extension != "":
			cond = fmt.Sprintf("%s files", strings.ToUpper(t.Extension))
		case t.MimeType != "":
			cond = fmt.Sprintf("%s files", t.MimeType)
		default:
			cond = "files of this type"
		}
	case KindTimeBased:
		cond = "files you organize around this time"
	case KindProjectBased:
		cond = fmt.Sprintf("files from the %q project", t.ProjectLabel)
	default:
		cond = "files like this"
	}
	return fmt.Sprintf("You moved %s to %q %d time(s)", cond, p.DestinationFolderName, p.Occurrences)
}
