// Package services contains the business logic for chat generation, quiz
// gameplay, conversations, and user accounts.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	contextutils "cyberadvisor/internal/utils"
)

// GenerationRequest carries everything one provider call needs: the rendered
// system instruction, the recent history window, and the new user message
// with its attachments.
type GenerationRequest struct {
	SystemInstruction string
	History           []models.ConversationTurn
	Message           string
	Attachments       []models.Attachment
}

// AIServiceInterface defines the generation operations consumed by the chat service.
type AIServiceInterface interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
	TemplateManager() *AITemplateManager
}

// generateFunc performs a single provider call against one credential and one
// model. It is a field so tests can substitute a fake transport.
type generateFunc func(ctx context.Context, apiKey, model string, req *GenerationRequest) (string, error)

// AIService sends generation requests to the provider, rotating through the
// credential pool and falling back through the model tier chain.
type AIService struct {
	httpClient *http.Client
	cfg        *config.Config

	templateManager *AITemplateManager

	call generateFunc

	logger *observability.Logger
}

// NewAIService creates a new generation service instance
func NewAIService(cfg *config.Config, logger *observability.Logger) *AIService {
	templateManager, err := NewAITemplateManager()
	if err != nil {
		logger.Error(context.Background(), "Failed to create template manager", err, map[string]interface{}{})
		panic(err) // Use panic for fatal errors in initialization
	}

	// Instrumented HTTP client. The per-call deadline comes from the request
	// context; the client timeout is a backstop.
	httpClient := &http.Client{
		Timeout: config.DefaultHTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	service := &AIService{
		httpClient:      httpClient,
		cfg:             cfg,
		templateManager: templateManager,
		logger:          logger,
	}
	service.call = service.callGemini

	return service
}

// TemplateManager exposes instruction rendering for prompts
func (s *AIService) TemplateManager() *AITemplateManager {
	return s.templateManager
}

// providerErrorMatcher maps raw error text to a provider error code. Matchers
// are checked in order; first substring hit wins.
type providerErrorMatcher struct {
	substrings []string
	code       contextutils.ErrorCode
}

var providerErrorMatchers = []providerErrorMatcher{
	{[]string{"quota", "resource_exhausted"}, contextutils.ErrorCodeProviderQuotaExceeded},
	{[]string{"429"}, contextutils.ErrorCodeProviderRateLimited},
	{[]string{"not found", "location", "unsupported"}, contextutils.ErrorCodeProviderModelUnavailable},
	{[]string{"timeout", "timed out", "deadline exceeded", "abort"}, contextutils.ErrorCodeProviderTransientNetwork},
}

// ClassifyProviderError buckets a raw provider failure by inspecting its
// message text. Providers surface quota and availability problems as free-form
// strings rather than stable codes, so substring matching is the contract.
func ClassifyProviderError(err error) contextutils.ErrorCode {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	for _, matcher := range providerErrorMatchers {
		for _, sub := range matcher.substrings {
			if strings.Contains(msg, sub) {
				return matcher.code
			}
		}
	}
	return contextutils.ErrorCodeProviderUnknown
}

// isCredentialFailure reports whether a failure is scoped to one credential.
// Credential failures rotate to the next key on the same model; everything
// else abandons the model and falls back to the next tier.
func isCredentialFailure(code contextutils.ErrorCode) bool {
	return code == contextutils.ErrorCodeProviderQuotaExceeded ||
		code == contextutils.ErrorCodeProviderRateLimited
}

// Generate walks the model tier chain in rank order, rotating through the
// credential pool on each tier. The first successful call wins. When every
// tier and credential has failed, the last underlying failure is returned
// wrapped as an exhaustion error.
func (s *AIService) Generate(ctx context.Context, req *GenerationRequest) (result0 string, err error) {
	ctx, span := observability.TraceGenerationFunction(ctx, "generate")
	defer observability.FinishSpan(span, &err)

	credentials := s.cfg.AI.Credentials()
	if len(credentials) == 0 {
		span.SetAttributes(attribute.String("generate.result", "no_credentials"))
		return "", contextutils.ErrNoCredentialsConfigured
	}

	tiers := s.cfg.AI.Tiers()
	var lastErr error

	for _, tier := range tiers {
		for i, credential := range credentials {
			text, callErr := s.call(ctx, credential, tier.Name, req)
			if callErr == nil {
				span.SetAttributes(
					attribute.String("generate.result", "success"),
					observability.AttributeModelTier(tier.Name),
					observability.AttributeCredentialIndex(i),
				)
				return text, nil
			}

			lastErr = callErr
			code := ClassifyProviderError(callErr)
			s.logger.Warn(ctx, "Provider call failed", map[string]interface{}{
				"model":            tier.Name,
				"credential":       contextutils.MaskAPIKey(credential),
				"credential_index": i,
				"error_kind":       string(code),
				"error":            callErr.Error(),
			})

			if isCredentialFailure(code) {
				continue
			}
			// Model-level failure: the remaining credentials would hit the
			// same wall, so abandon this tier.
			break
		}
	}

	span.SetAttributes(attribute.String("generate.result", "exhausted"))
	s.logger.Error(ctx, "All credentials and model tiers exhausted", lastErr, map[string]interface{}{
		"tiers":       len(tiers),
		"credentials": len(credentials),
	})
	return "", contextutils.NewAppErrorWithCause(
		contextutils.ErrorCodeAllProvidersExhausted,
		contextutils.SeverityError,
		"All credentials and model tiers exhausted",
		lastErr.Error(),
		lastErr,
	)
}

// Gemini REST wire types. Field names follow the generateContent JSON shape.
type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// buildGeminiRequest converts the history window plus the new message into
// provider wire format. Attachments ride along as inline data parts on the
// final user content.
func buildGeminiRequest(req *GenerationRequest) *geminiRequest {
	body := &geminiRequest{}

	if req.SystemInstruction != "" {
		body.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}

	for _, turn := range req.History {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		body.Contents = append(body.Contents, geminiContent{
			Role:  string(turn.Role),
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}

	current := geminiContent{Role: string(models.RoleUser)}
	if req.Message != "" {
		current.Parts = append(current.Parts, geminiPart{Text: req.Message})
	}
	for _, att := range req.Attachments {
		current.Parts = append(current.Parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: att.MimeType,
				Data:     att.Payload,
			},
		})
	}
	if len(current.Parts) > 0 {
		body.Contents = append(body.Contents, current)
	}

	return body
}

// callGemini performs one generateContent call against a single credential
// and model. A call that outlives the provider timeout is surfaced as a
// deadline error and classified as a transient network failure upstream.
func (s *AIService) callGemini(ctx context.Context, apiKey, model string, req *GenerationRequest) (result0 string, err error) {
	ctx, span := observability.TraceGenerationFunction(ctx, "call_gemini",
		observability.AttributeModelTier(model),
	)
	defer observability.FinishSpan(span, &err)

	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	payload, err := json.Marshal(buildGeminiRequest(req))
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "marshal_error"))
		return "", contextutils.WrapError(err, "failed to marshal provider request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.AI.URL, "/"), model, url.QueryEscape(apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "request_error"))
		return "", contextutils.WrapError(err, "failed to create provider request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	s.logger.Debug(ctx, "Sending generation request", map[string]interface{}{
		"model":         model,
		"api_key":       contextutils.MaskAPIKey(apiKey),
		"history_turns": len(req.History),
		"attachments":   len(req.Attachments),
	})

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "network_error"))
		return "", contextutils.ErrorWithContextf("provider request failed after %v: %v", duration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "read_error"))
		return "", contextutils.WrapError(err, "failed to read provider response")
	}

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(
			attribute.String("call.result", "http_error"),
			attribute.Int("call.status_code", resp.StatusCode),
		)
		return "", contextutils.ErrorWithContextf("provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		span.SetAttributes(attribute.String("call.result", "unmarshal_error"))
		return "", contextutils.WrapError(err, "failed to parse provider response")
	}

	if parsed.Error != nil {
		span.SetAttributes(attribute.String("call.result", "provider_error"))
		return "", contextutils.ErrorWithContextf("provider error %d (%s): %s",
			parsed.Error.Code, parsed.Error.Status, parsed.Error.Message)
	}

	if len(parsed.Candidates) == 0 {
		span.SetAttributes(attribute.String("call.result", "no_candidates"))
		return "", contextutils.ErrorWithContextf("provider returned no candidates")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		span.SetAttributes(attribute.String("call.result", "empty_content"))
		return "", contextutils.ErrorWithContextf("provider returned empty content")
	}

	span.SetAttributes(
		attribute.String("call.result", "success"),
		attribute.Int("call.response_length", len(text)),
		attribute.Int64("call.duration_ms", duration.Milliseconds()),
	)
	return text, nil
}
