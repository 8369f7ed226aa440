// Package llm generates practice quizzes through an OpenAI-compatible
// chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second

	systemPrompt = "You are a quiz generator for a student portal. " +
		"Respond with a single JSON object containing a \"questions\" array. " +
		"Each question has \"question\", an \"options\" array of four strings, " +
		"and \"correctAnswer\" matching one of the options exactly. " +
		"Respond with JSON only, no prose."
)

// Config holds the connection parameters for the quiz generator.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Generator produces quizzes by prompting a chat model and extracting the
// question list from whatever JSON shape comes back.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGenerator constructs a Generator.
func NewGenerator(cfg Config) *Generator {
	mdl := cfg.Model
	if mdl == "" {
		mdl = defaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      mdl,
		httpClient: client,
		logger:     logger.With("component", "quiz_generator"),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate prompts the model and returns validated questions with fresh ids.
func (g *Generator) Generate(ctx context.Context, req *model.GenerateQuizRequest) ([]model.QuizQuestion, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	userPrompt := fmt.Sprintf(
		"Create a quiz about %s with exactly %d multiple-choice questions at %s difficulty.",
		strings.TrimSpace(req.Topic), req.QuestionCount, req.Difficulty)

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.7,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNetworkOrTimeout, "quiz model unreachable")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := "quiz model request failed"
		if chat.Error != nil && chat.Error.Message != "" {
			msg = chat.Error.Message
		}
		g.logger.WarnContext(ctx, "chat completion failed", "status", resp.StatusCode, "error", msg)
		return nil, fmt.Errorf("quiz model returned %d: %s", resp.StatusCode, msg)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("quiz model returned no choices")
	}

	questions, err := parseQuestions(chat.Choices[0].Message.Content)
	if err != nil {
		g.logger.WarnContext(ctx, "unusable quiz payload", "error", err)
		return nil, err
	}
	if len(questions) > req.QuestionCount {
		questions = questions[:req.QuestionCount]
	}
	return questions, nil
}

// parseQuestions digs the question array out of the model's reply. Models
// wander between {"questions": [...]}, {"quiz": [...]}, {"quiz":
// {"questions": [...]}} and a bare array, so the shape is probed with
// JMESPath rather than a fixed struct.
func parseQuestions(content string) ([]model.QuizQuestion, error) {
	content = stripCodeFence(content)

	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("quiz payload is not JSON: %w", err)
	}

	raw := data
	if _, isArray := data.([]any); !isArray {
		raw = nil
		for _, expr := range []string{"questions", "quiz.questions", "quiz"} {
			res, err := jmespath.Search(expr, data)
			if err != nil {
				continue
			}
			if _, ok := res.([]any); ok {
				raw = res
				break
			}
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("quiz payload has no question array")
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encoding questions: %w", err)
	}
	var questions []model.QuizQuestion
	if err := json.Unmarshal(encoded, &questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}

	out := questions[:0]
	for _, q := range questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quiz payload has no usable questions")
	}
	return out, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
