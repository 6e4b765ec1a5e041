package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/beancount-import/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient implements AIClient with the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logging.Logger
}

// NewGeminiClient creates a Gemini-backed AIClient.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// SuggestAccount asks Gemini to pick one of accounts for description.
func (c *GeminiClient) SuggestAccount(ctx context.Context, description string, accounts []string) (string, error) {
	prompt := buildAccountPrompt(description, accounts)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	account := extractAccountFromResponse(responseText)

	if c.logger != nil {
		c.logger.WithFields(
			logging.Field{Key: logging.FieldOperation, Value: "gemini_classification"},
			logging.Field{Key: "description", Value: description},
			logging.Field{Key: logging.FieldAccount, Value: account},
		).Debug("Gemini suggested an account")
	}
	return account, nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func buildAccountPrompt(description string, accounts []string) string {
	return fmt.Sprintf(`Classify the following bank statement transaction into a ledger account.
Description: %s

Choose exactly one of these accounts:
%s

Respond in this format:
Account: [Selected Account]`,
		description,
		strings.Join(accounts, "\n"))
}

func extractAccountFromResponse(response string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Account:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Account:"))
		}
	}
	return strings.TrimSpace(response)
}
