package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// OpenAIConfig holds configuration for the OpenAI-backed translator.
type OpenAIConfig struct {
	// APIKey authenticates against the provider
	APIKey string

	// Model is the chat model used for translation
	// (default: openai.GPT4)
	Model string

	// Source and Target are the translation language pair
	// (default: English to Japanese)
	Source language.Tag
	Target language.Tag

	// BatchTimeout bounds one batch request (default: 30s)
	BatchTimeout time.Duration
}

// DefaultOpenAIConfig returns sensible default configuration.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:       apiKey,
		Model:        openai.GPT4,
		Source:       language.English,
		Target:       language.Japanese,
		BatchTimeout: 30 * time.Second,
	}
}

// chatCompleter is the slice of the OpenAI client the translator
// uses, kept narrow so tests can substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAITranslator implements Translator against the OpenAI chat API.
// Each batch goes out as one request carrying a JSON array of source
// strings; the model answers with a JSON array of the same length.
type OpenAITranslator struct {
	config OpenAIConfig
	client chatCompleter
}

// NewOpenAITranslator creates a translator with the given
// configuration.
func NewOpenAITranslator(config OpenAIConfig) *OpenAITranslator {
	if config.Model == "" {
		config.Model = openai.GPT4
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 30 * time.Second
	}
	return &OpenAITranslator{
		config: config,
		client: openai.NewClient(config.APIKey),
	}
}

// Translate implements Translator.
func (t *OpenAITranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.BatchTimeout)
	defer cancel()

	response, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: t.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: t.exampleRequest()},
			{Role: openai.ChatMessageRoleAssistant, Content: t.exampleAnswer()},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(response.Choices) == 0 {
		return nil, &Error{Kind: KindUnknown, Err: errors.New("empty completion")}
	}

	var translated []string
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &translated); err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("malformed completion: %w", err)}
	}
	if len(translated) != len(texts) {
		return nil, &Error{
			Kind: KindUnknown,
			Err:  fmt.Errorf("sent %d texts, got %d back", len(texts), len(translated)),
		}
	}
	return translated, nil
}

func (t *OpenAITranslator) systemPrompt() string {
	english := display.English.Languages()
	return fmt.Sprintf(
		"You are a document translator. The user provides a JSON array of %s text segments. "+
			"Translate each segment into %s and answer with a JSON array of the same length, "+
			"in the same order. Preserve numbers, citations and inline references. "+
			"Answer with the JSON array only.",
		english.Name(t.config.Source), english.Name(t.config.Target))
}

// exampleRequest is the few-shot user turn. English is the default
// pair; any other source language gets neutral placeholders so the
// example never leads the model toward the wrong source.
func (t *OpenAITranslator) exampleRequest() string {
	if t.config.Source == language.English {
		return `["Hello.", "See Figure 2."]`
	}
	return `["<first source segment>", "<second source segment>"]`
}

func (t *OpenAITranslator) exampleAnswer() string {
	// A target-language few-shot answer keeps weaker models from
	// echoing the source. Japanese is the default pair; any other
	// target still sees the array shape.
	if t.config.Target == language.Japanese {
		return `["こんにちは。", "図2を参照。"]`
	}
	return `["<first segment translated>", "<second segment translated>"]`
}

// classify maps transport and provider errors onto the package's
// error kinds.
func classify(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Err: err}
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return &Error{Kind: KindConnection, Err: err}
		default:
			return &Error{Kind: KindUnknown, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Err: err}
		}
		return &Error{Kind: KindConnection, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindConnection, Err: err}
	}

	return &Error{Kind: KindUnknown, Err: err}
}
