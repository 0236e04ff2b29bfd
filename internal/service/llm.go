package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pageza/mealplanner/backend/internal/cache"
	"github.com/pageza/mealplanner/backend/internal/metrics"
	"go.uber.org/zap"
)

const aiCacheTTL = 24 * time.Hour

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// AIConfig points the client at an OpenAI-compatible chat completions API.
type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
	Timeout     time.Duration
}

// AIService asks a language model for cooking help. Completions are cached in
// Redis keyed by a hash of the request.
type AIService struct {
	cfg    AIConfig
	client *http.Client
	cache  *cache.Cache
	logger *zap.Logger
}

// NewAIService creates an AI client. c may be nil to disable caching.
func NewAIService(cfg AIConfig, c *cache.Cache, logger *zap.Logger) *AIService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  c,
		logger: logger,
	}
}

// Enabled reports whether an API key is configured.
func (s *AIService) Enabled() bool {
	return s != nil && s.cfg.APIKey != ""
}

// Message represents a message in the chat. Content is a string or a list of
// content parts.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// Request represents a chat completions request
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// MealSuggestion is a recipe idea proposed by the model.
type MealSuggestion struct {
	Name         string        `json:"name"`
	Ingredients  flexibleItems `json:"ingredients"`
	Instructions []string      `json:"instructions"`
}

// Substitution is a replacement for an ingredient.
type Substitution struct {
	Name  string `json:"name"`
	Ratio string `json:"ratio"`
	Notes string `json:"notes"`
}

// flexibleItems accepts ingredient lists given either as strings or as
// objects carrying an item or name field.
type flexibleItems []string

func (f *flexibleItems) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var str string
		if err := json.Unmarshal(r, &str); err == nil {
			out = append(out, str)
			continue
		}
		var obj struct {
			Item string `json:"item"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return fmt.Errorf("unsupported ingredient entry: %s", r)
		}
		if obj.Item != "" {
			out = append(out, obj.Item)
		} else {
			out = append(out, obj.Name)
		}
	}
	*f = out
	return nil
}

const assistantPrompt = "You are a helpful cooking assistant."

// MealSuggestions proposes recipes using the given ingredients.
func (s *AIService) MealSuggestions(ctx context.Context, ingredients []string) ([]MealSuggestion, error) {
	prompt := fmt.Sprintf("Generate recipe suggestions using these ingredients: %s. "+
		"Return the response as a JSON array of recipes, where each recipe has: name, "+
		"ingredients (array of strings), and instructions (array of steps).",
		strings.Join(ingredients, ", "))

	content, err := s.complete(ctx, "meal_suggestions", s.cfg.Model, true,
		Message{Role: "system", Content: assistantPrompt + " You provide recipe suggestions."},
		Message{Role: "user", Content: prompt},
	)
	if err != nil {
		return nil, err
	}

	var suggestions []MealSuggestion
	if err := decodeJSONReply(content, &suggestions, "recipes"); err != nil {
		return nil, fmt.Errorf("failed to parse meal suggestions: %w", err)
	}
	return suggestions, nil
}

// Substitutions suggests replacements for ingredient.
func (s *AIService) Substitutions(ctx context.Context, ingredient string) ([]Substitution, error) {
	prompt := fmt.Sprintf("Suggest substitutions for %s in cooking. Return the response as a JSON "+
		"array of substitutions, where each substitution has: name, ratio, and notes.", ingredient)

	content, err := s.complete(ctx, "substitutions", s.cfg.Model, true,
		Message{Role: "system", Content: assistantPrompt + " You provide ingredient substitution suggestions."},
		Message{Role: "user", Content: prompt},
	)
	if err != nil {
		return nil, err
	}

	var subs []Substitution
	if err := decodeJSONReply(content, &subs, "substitutions"); err != nil {
		return nil, fmt.Errorf("failed to parse substitutions: %w", err)
	}
	return subs, nil
}

// RecipeInstructions writes step-by-step instructions for a recipe.
func (s *AIService) RecipeInstructions(ctx context.Context, name string, ingredients []string) ([]string, error) {
	prompt := fmt.Sprintf("Generate detailed cooking instructions for %s using these ingredients: %s. "+
		"Return the response as a JSON array of instruction steps.", name, strings.Join(ingredients, ", "))

	content, err := s.complete(ctx, "instructions", s.cfg.Model, true,
		Message{Role: "system", Content: assistantPrompt + " You provide detailed recipe instructions."},
		Message{Role: "user", Content: prompt},
	)
	if err != nil {
		return nil, err
	}

	var steps []string
	if err := decodeJSONReply(content, &steps, "instructions"); err != nil {
		return nil, fmt.Errorf("failed to parse instructions: %w", err)
	}
	return steps, nil
}

// Chat answers a free-form cooking question.
func (s *AIService) Chat(ctx context.Context, message string) (string, error) {
	return s.complete(ctx, "chat", s.cfg.Model, false,
		Message{Role: "system", Content: assistantPrompt},
		Message{Role: "user", Content: message},
	)
}

// DetectedItem is a food item recognised in a photo.
type DetectedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
	State    string `json:"state,omitempty"`
}

const visionPrompt = "List the food items visible in this image. Respond with JSON of the form " +
	`{"items":[{"name":"","quantity":1,"unit":"","category":"","state":""}]}` +
	". Use whole numbers for quantity."

// AnalyzeImage asks the vision model which food items the image shows.
func (s *AIService) AnalyzeImage(ctx context.Context, image []byte, contentType string) ([]DetectedItem, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))
	content, err := s.complete(ctx, "image_analysis", s.cfg.VisionModel, true,
		Message{Role: "user", Content: []contentPart{
			{Type: "text", Text: visionPrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		}},
	)
	if err != nil {
		return nil, err
	}

	var items []DetectedItem
	if err := decodeJSONReply(content, &items, "items"); err != nil {
		return nil, fmt.Errorf("failed to parse image analysis: %w", err)
	}
	return items, nil
}

func (s *AIService) complete(ctx context.Context, operation, model string, cacheable bool, messages ...Message) (string, error) {
	if !s.Enabled() {
		return "", ErrAIUnavailable
	}

	reqBody := Request{Model: model, Messages: messages}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	key := ""
	if cacheable && s.cache.Enabled() {
		sum := sha256.Sum256(jsonData)
		key = "ai:" + operation + ":" + hex.EncodeToString(sum[:])
		var cached string
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("ai cache read failed", zap.String("operation", operation), zap.Error(err))
		}
		if hit {
			metrics.AIRequests.WithLabelValues(operation, "cached").Inc()
			return cached, nil
		}
	}

	content, err := s.post(ctx, jsonData)
	if err != nil {
		metrics.AIRequests.WithLabelValues(operation, "error").Inc()
		s.logger.Error("ai request failed", zap.String("operation", operation), zap.Error(err))
		return "", err
	}
	metrics.AIRequests.WithLabelValues(operation, "success").Inc()

	if key != "" {
		if err := s.cache.SetTTL(ctx, key, content, aiCacheTTL); err != nil {
			s.logger.Warn("ai cache write failed", zap.String("operation", operation), zap.Error(err))
		}
	}
	return content, nil
}

func (s *AIService) post(ctx context.Context, jsonData []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}
	return result.Choices[0].Message.Content, nil
}

// extractJSON returns the body of the first fenced code block, or the whole
// reply when there is none.
func extractJSON(content string) string {
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

// decodeJSONReply decodes a model reply into dest, which must point to a
// slice. Replies wrapping the array in an object under wrapperKey are
// accepted as well.
func decodeJSONReply(content string, dest interface{}, wrapperKey string) error {
	data := []byte(extractJSON(content))
	if err := json.Unmarshal(data, dest); err == nil {
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	inner, ok := wrapper[wrapperKey]
	if !ok {
		return fmt.Errorf("reply has no %q field", wrapperKey)
	}
	return json.Unmarshal(inner, dest)
}
