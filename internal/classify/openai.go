package classify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/verilens/verilens/internal/models"
)

const (
	defaultModel = "gpt-4o"
	maxTokens    = 2048
)

// OpenAIClassifier is the production classification service, backed by a
// multimodal chat completion.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, data []byte, kind models.MediaKind, claim models.ContextClaim) (RawPayload, error) {
	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: buildPrompt(kind, claim),
			},
		},
	}

	// Only still images can travel inline. Video and audio verdicts rely on
	// the declared kind and the context claim in the prompt.
	if kind == models.MediaKindImage {
		message.MultiContent = append(message.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(data)),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []openai.ChatCompletionMessage{message},
	})
	if err != nil {
		return RawPayload{}, fmt.Errorf("classification request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return RawPayload{}, fmt.Errorf("classification service returned no choices")
	}

	return DecodePayload([]byte(resp.Choices[0].Message.Content)), nil
}

func buildPrompt(kind models.MediaKind, claim models.ContextClaim) string {
	prompt := fmt.Sprintf("You are a media forensics ensemble. Analyze the submitted %s file for signs of manipulation "+
		"(deepfake artifacts, splicing, re-compression, generative noise) and respond with a single JSON object using "+
		"these keys: authenticityScore (0-100, 100 = authentic), isManipulated (boolean), manipulationType (array of "+
		"strings), ensembleData (array of {modelName, score, confidence: LOW|MEDIUM|HIGH, focusArea}), "+
		"semanticMismatchDetected (boolean), semanticAnalysisText (string), reasoning (string), suspiciousRegions "+
		"(array of {x, y, width, height, label, confidence} in percentage coordinates), metadata (object of strings). "+
		"Respond with JSON only, no prose.", kind)

	if claim.Provided {
		prompt += fmt.Sprintf(" The uploader claims the content shows: %q. Compare that claim against the content and "+
			"report any semantic mismatch.", claim.Text)
	}

	return prompt
}
