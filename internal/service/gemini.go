package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blood-request-coordinator/internal/config"
	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/models"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// GeminiClient calls the generateContent endpoint of the Gemini REST API
type GeminiClient struct {
	http    *retryablehttp.Client
	baseURL string
	model   string
	apiKey  string
}

// NewGeminiClient returns nil when no API key is configured
func NewGeminiClient(cfg config.ChatConfig) *GeminiClient {
	if cfg.APIKey == "" {
		return nil
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 3 * time.Second
	client.Logger = retryLogger{}

	return &GeminiClient{
		http:    client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *GeminiClient) Generate(ctx context.Context, system string, history []models.ChatMessage) (string, error) {
	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
	}
	body.GenerationConfig.Temperature = 0.9
	for _, msg := range history {
		body.Contents = append(body.Contents, geminiContent{
			Role:  string(msg.Role),
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode gemini response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, msg)
	}

	var text strings.Builder
	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	if text.Len() == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return text.String(), nil
}

// retryLogger routes retryablehttp's leveled logs to logrus
type retryLogger struct{}

func (retryLogger) entry(kv []interface{}) *logrus.Entry {
	fields := logrus.Fields{"client": "gemini"}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return logging.API.WithFields(fields)
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.entry(kv).Error(msg) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.entry(kv).Warn(msg) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.entry(kv).Debug(msg) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.entry(kv).Debug(msg) }
