package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"

	"ladle/model"
)

// NotARecipe is the sentinel name the model returns when the source
// material is not about cooking. Callers treat it as extraction failure,
// never as a recipe literally named that.
const NotARecipe = "NOT_A_RECIPE"

const maxPageContext = 15000

const pagePrompt = `You are a recipe extraction assistant. The user gives you the text content of a web page.
Extract the recipe it describes. Keep ingredient quantities and units exactly as written.
Write the instructions as numbered steps in cooking order.
If the page does not describe a recipe, set the name to "NOT_A_RECIPE".`

const videoPrompt = `You are a recipe extraction assistant. The user gives you the title, channel, description and transcript of a cooking video.
Reconstruct the recipe being made. Estimate quantities for vague amounts like "a pinch" or "a handful" and prefix estimates with "~".
Write the instructions in logical cooking order, even if the transcript is informal or out of order.
If this is not a cooking video, set the name to "NOT_A_RECIPE".`

// recipeSchema is the strict response contract. Structured outputs demands
// that every property is listed in required and that additionalProperties is
// disabled on every object, so optional fields are nullable rather than
// omitted. Only name carries real content requirements.
var recipeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"description": {"type": ["string", "null"]},
		"instructions": {"type": ["array", "null"], "items": {"type": "string"}},
		"cuisine": {"type": ["string", "null"]},
		"category": {"type": ["string", "null"]},
		"cookingTime": {"type": ["integer", "null"]},
		"servings": {"type": ["integer", "null"]},
		"caloriesPerServing": {"type": ["integer", "null"]},
		"ingredients": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"quantity": {"type": ["string", "null"]},
					"unit": {"type": ["string", "null"]}
				},
				"required": ["name", "quantity", "unit"],
				"additionalProperties": false
			}
		}
	},
	"required": ["name", "description", "instructions", "cuisine", "category", "cookingTime", "servings", "caloriesPerServing", "ingredients"],
	"additionalProperties": false
}`)

// Synthesizer is the pipeline's last-resort extractor and the only one for
// video sources: it prompts a language model with the scraped text and a
// strict JSON schema for the reply.
type Synthesizer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewSynthesizer(client *openai.Client, chatModel string, logger *slog.Logger) *Synthesizer {
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	return &Synthesizer{
		client:  client,
		model:   chatModel,
		timeout: 60 * time.Second,
		logger:  logger,
	}
}

// FromPage synthesizes a recipe from cleaned web page text. Returns nil
// (without error) when the model decides the page is not a recipe.
func (s *Synthesizer) FromPage(ctx context.Context, pageText, sourceURL string) (*model.ParsedRecipe, error) {
	if len(pageText) > maxPageContext {
		pageText = pageText[:maxPageContext]
	}
	r, err := s.complete(ctx, pagePrompt, pageText)
	if err != nil || r == nil {
		return nil, err
	}
	r.SourceURL = sourceURL
	return r, nil
}

// FromVideo synthesizes a recipe from extracted video metadata.
func (s *Synthesizer) FromVideo(ctx context.Context, info *model.VideoInfo) (*model.ParsedRecipe, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", info.Title)
	if info.ChannelName != "" {
		fmt.Fprintf(&b, "Channel: %s\n", info.ChannelName)
	}
	if info.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", info.Description)
	}
	if info.Transcript != "" {
		fmt.Fprintf(&b, "\nTranscript:\n%s\n", info.Transcript)
	}

	r, err := s.complete(ctx, videoPrompt, b.String())
	if err != nil || r == nil {
		return nil, err
	}
	r.SourceURL = info.URL
	if r.ImageURL == "" {
		r.ImageURL = info.ThumbnailURL
	}
	return r, nil
}

// recipeReply is the wire shape of the model's JSON answer.
type recipeReply struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Instructions       []string `json:"instructions"`
	Cuisine            string   `json:"cuisine"`
	Category           string   `json:"category"`
	CookingTime        int      `json:"cookingTime"`
	Servings           int      `json:"servings"`
	CaloriesPerServing int      `json:"caloriesPerServing"`
	Ingredients        []struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Unit     string `json:"unit"`
	} `json:"ingredients"`
}

func (s *Synthesizer) complete(ctx context.Context, system, user string) (*model.ParsedRecipe, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "recipe",
				Schema: recipeSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize recipe: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	return DecodeReply(resp.Choices[len(resp.Choices)-1].Message.Content)
}

// DecodeReply parses the model's JSON answer into a ParsedRecipe. A parse
// failure, missing name or the NOT_A_RECIPE sentinel all yield nil.
func DecodeReply(content string) (*model.ParsedRecipe, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply recipeReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}

	name := strings.TrimSpace(reply.Name)
	if name == "" || name == NotARecipe {
		return nil, nil
	}

	r := &model.ParsedRecipe{
		Name:               name,
		Description:        reply.Description,
		Instructions:       strings.Join(reply.Instructions, "\n"),
		Cuisine:            reply.Cuisine,
		Category:           reply.Category,
		CookingTime:        reply.CookingTime,
		Servings:           reply.Servings,
		CaloriesPerServing: reply.CaloriesPerServing,
		Source:             model.SourceAIParsed,
	}
	for _, ing := range reply.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, model.ParsedIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	return r, nil
}
