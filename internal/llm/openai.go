package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/eidolonhq/eidolon/internal/model"
)

// OpenAIProvider drives any OpenAI-compatible chat endpoint: OpenAI itself,
// OpenRouter, or a local Ollama serving /v1.
type OpenAIProvider struct {
	client *openai.Client
	cfg    model.LLMConfig
	name   string
}

func newOpenAIProvider(name string, cfg model.LLMConfig) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		name:   name,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Analyze sends the grounded context and question, expecting strict JSON
// back. Any transport or parse failure degrades to the profile fallback.
func (p *OpenAIProvider) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1200
	}
	timeout := time.Duration(p.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleSystem, Content: modeGuidance(req.Mode)},
		{Role: openai.ChatMessageRoleSystem, Content: workflowAnchor},
	}
	if grounding := buildContext(req.Profile); grounding != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem, Content: grounding,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: req.Question,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return Fallback(req.Profile, req.Mode), nil
	}
	if len(resp.Choices) == 0 {
		return Fallback(req.Profile, req.Mode), nil
	}

	out := interpretContent(req.Profile, req.Mode, resp.Choices[0].Message.Content, modelName)
	out.TokensUsed = resp.Usage.TotalTokens
	return out, nil
}

// extractJSON pulls the first JSON object out of the raw completion, which
// may be wrapped in prose or a code fence.
func extractJSON(content string) (gjson.Result, bool) {
	trimmed := strings.TrimSpace(content)
	if gjson.Valid(trimmed) {
		return gjson.Parse(trimmed), true
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		candidate := trimmed[start : end+1]
		if gjson.Valid(candidate) {
			return gjson.Parse(candidate), true
		}
	}
	return gjson.Result{}, false
}

// interpretContent applies the grounding guardrails to one raw completion.
func interpretContent(p *model.BrandProfile, mode, content, modelName string) *AnalyzeResponse {
	parsed, ok := extractJSON(content)
	if !ok {
		return Fallback(p, mode)
	}

	var citations []model.EvidenceCitation
	parsed.Get("citations").ForEach(func(_, c gjson.Result) bool {
		if len(citations) >= 8 {
			return false
		}
		if !c.IsObject() {
			return true
		}
		title := c.Get("title").String()
		if title == "" {
			title = "Untitled citation"
		}
		source := c.Get("source").String()
		if source == "" {
			source = "unknown"
		}
		citations = append(citations, model.EvidenceCitation{
			Title:   title,
			URL:     c.Get("url").String(),
			Source:  source,
			Snippet: c.Get("snippet").String(),
		})
		return true
	})
	if len(citations) == 0 && p != nil {
		citations = p.Evidence
		if len(citations) > 4 {
			citations = citations[:4]
		}
	}

	confidence := parsed.Get("confidence").Float()
	if confidence <= 0 {
		confidence = 0.55
	}
	if confidence > 1 {
		confidence = 1
	}

	answer := parsed.Get("answer").String()
	if answer == "" {
		answer = "Insufficient model output; returning conservative summary."
	}

	// Reject answers that deny context the profile clearly provides.
	if p != nil && shouldForceGrounding(answer) {
		out := Fallback(p, mode)
		if confidence > out.Confidence {
			out.Confidence = confidence
		}
		out.Model = modelName + "+guardrail"
		return out
	}

	if p != nil && !strings.Contains(strings.ToLower(answer), strings.ToLower(p.Brand.Name)) {
		answer = p.Brand.Name + ": " + answer
	}

	return &AnalyzeResponse{
		Answer:     answer,
		Confidence: confidence,
		Citations:  citations,
		Model:      modelName,
	}
}
