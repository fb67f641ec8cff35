package translate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
)

func TestTranslatable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain sentence", "The quick brown fox.", true},
		{"cjk text", "これは本文です。", true},
		{"empty", "", false},
		{"whitespace only", "   \n\t ", false},
		{"bare number", "42", false},
		{"punctuation run", "....", false},
		{"tex command", `\begin{equation}`, false},
		{"oversized", strings.Repeat("a", MaxUnitLength+1), false},
		{"page number with label", "Page 42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translatable(tt.text); got != tt.want {
				t.Errorf("Translatable(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindTimeout, true},
		{KindConnection, true},
		{KindRateLimited, true},
		{KindUnknown, false},
	}

	for _, tt := range tests {
		err := &Error{Kind: tt.kind, Err: errors.New("x")}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("Retryable for %v = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := classify(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}); got.Kind != KindRateLimited {
		t.Errorf("429 should classify as rate limited, got %v", got.Kind)
	}
	if got := classify(&openai.APIError{HTTPStatusCode: http.StatusBadGateway}); got.Kind != KindConnection {
		t.Errorf("502 should classify as connection, got %v", got.Kind)
	}
	if got := classify(&openai.APIError{HTTPStatusCode: http.StatusBadRequest}); got.Kind != KindUnknown {
		t.Errorf("400 should classify as unknown, got %v", got.Kind)
	}
	if got := classify(context.DeadlineExceeded); got.Kind != KindTimeout {
		t.Errorf("Deadline should classify as timeout, got %v", got.Kind)
	}
}

// fakeCompleter answers with a canned completion or error.
type fakeCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestTranslator(fake *fakeCompleter) *OpenAITranslator {
	return &OpenAITranslator{
		config: OpenAIConfig{
			Model:        openai.GPT4,
			Source:       language.English,
			Target:       language.Japanese,
			BatchTimeout: time.Second,
		},
		client: fake,
	}
}

func TestOpenAITranslator_BatchRoundTrip(t *testing.T) {
	fake := &fakeCompleter{content: `["一つ目", "二つ目"]`}
	translator := newTestTranslator(fake)

	got, err := translator.Translate(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(got) != 2 || got[0] != "一つ目" || got[1] != "二つ目" {
		t.Errorf("Unexpected translations: %v", got)
	}

	// The batch itself travels as the final user message.
	last := fake.lastReq.Messages[len(fake.lastReq.Messages)-1]
	if last.Role != openai.ChatMessageRoleUser || !strings.Contains(last.Content, `"first"`) {
		t.Errorf("Batch payload missing from request: %+v", last)
	}
}

func TestOpenAITranslator_ExampleFollowsLanguagePair(t *testing.T) {
	fake := &fakeCompleter{content: `["uno"]`}
	translator := newTestTranslator(fake)
	translator.config.Source = language.Spanish
	translator.config.Target = language.Italian

	if _, err := translator.Translate(context.Background(), []string{"hola"}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	// The few-shot turns must not steer a non-English pair with an
	// English example.
	for _, msg := range fake.lastReq.Messages[:len(fake.lastReq.Messages)-1] {
		if strings.Contains(msg.Content, "Hello") {
			t.Errorf("Non-English pair sent an English example: %q", msg.Content)
		}
	}
	example := fake.lastReq.Messages[1]
	if example.Role != openai.ChatMessageRoleUser || !strings.HasPrefix(example.Content, "[") {
		t.Errorf("Few-shot request should stay a JSON array, got %+v", example)
	}
}

func TestOpenAITranslator_CountMismatchFails(t *testing.T) {
	fake := &fakeCompleter{content: `["only one"]`}
	translator := newTestTranslator(fake)

	_, err := translator.Translate(context.Background(), []string{"first", "second"})
	if err == nil {
		t.Fatal("Expected an error on count mismatch")
	}
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindUnknown {
		t.Errorf("Expected unknown-kind error, got %v", err)
	}
	if terr.Retryable() {
		t.Error("Count mismatch is not transient, must not be retryable")
	}
}

func TestOpenAITranslator_MalformedCompletionFails(t *testing.T) {
	fake := &fakeCompleter{content: "Sure! Here are the translations:"}
	translator := newTestTranslator(fake)

	_, err := translator.Translate(context.Background(), []string{"first"})
	if err == nil {
		t.Fatal("Expected an error on non-JSON completion")
	}
}

func TestOpenAITranslator_RateLimitSurfacesRetryable(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}}
	translator := newTestTranslator(fake)

	_, err := translator.Translate(context.Background(), []string{"first"})
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("Expected a classified error, got %v", err)
	}
	if terr.Kind != KindRateLimited || !terr.Retryable() {
		t.Errorf("Expected retryable rate-limit error, got kind %v", terr.Kind)
	}
}

func TestOpenAITranslator_EmptyBatchNoRequest(t *testing.T) {
	fake := &fakeCompleter{content: `[]`}
	translator := newTestTranslator(fake)

	got, err := translator.Translate(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("Empty batch should be a no-op, got %v, %v", got, err)
	}
	if len(fake.lastReq.Messages) != 0 {
		t.Error("Empty batch must not reach the provider")
	}
}
