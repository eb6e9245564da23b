package extractor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Extractor derives structured appointment fields from free user text. The
// reference date anchors relative phrases like "next Tuesday".
type Extractor interface {
	Extract(ctx context.Context, input, referenceDate string) (ParsedAppointment, error)
}

// Gemini extracts appointments through the Gemini API with a constrained
// JSON response schema.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

var appointmentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":    {Type: genai.TypeString, Description: "Purpose of the appointment"},
		"date":     {Type: genai.TypeString, Description: "YYYY-MM-DD format"},
		"time":     {Type: genai.TypeString, Description: "HH:mm format 24h"},
		"location": {Type: genai.TypeString, Description: "Location or clinic name"},
	},
	Required: []string{"title", "date", "time", "location"},
}

func (g *Gemini) Extract(ctx context.Context, input, referenceDate string) (ParsedAppointment, error) {
	prompt := buildPrompt(input, referenceDate)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   appointmentSchema,
	})
	if err != nil {
		return ParsedAppointment{}, fmt.Errorf("%w: gemini call: %v", ErrUnparsable, err)
	}

	text := resp.Text()
	if text == "" {
		return ParsedAppointment{}, fmt.Errorf("%w: empty response", ErrUnparsable)
	}

	return Decode(text)
}

func buildPrompt(input, referenceDate string) string {
	return fmt.Sprintf(`Current Date: %s. User Input: %q.
Extract the appointment details. If no year is specified, assume the current or next occurrence.
If no specific location is mentioned, use "Not specified".
Return JSON only.`, referenceDate, input)
}
