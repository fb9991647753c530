// Package classifier holds the evidence classifiers: a Bedrock vision model
// and a disabled stand-in for environments without one.
package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/internal/verification/models"
)

const (
	anthropicVersion = "bedrock-2023-05-31"
	defaultMaxTokens = 1024
	// DefaultModelID is used when no model is configured.
	DefaultModelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"
)

// ErrMalformedVerdict is returned when the model reply is not the expected JSON.
var ErrMalformedVerdict = errors.New("classifier returned a malformed verdict")

// InvokeModelAPI is the slice of the Bedrock runtime client the classifier uses.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Bedrock asks a vision model on AWS Bedrock whether a payment screenshot is genuine.
type Bedrock struct {
	client    InvokeModelAPI
	modelID   string
	addresses map[string]string
	maxTokens int
}

type BedrockOption func(*Bedrock)

// WithAuthorizedAddresses lists the destination addresses a genuine payment
// must show, keyed by network label.
func WithAuthorizedAddresses(addresses map[string]string) BedrockOption {
	return func(b *Bedrock) {
		b.addresses = addresses
	}
}

func WithMaxTokens(n int) BedrockOption {
	return func(b *Bedrock) {
		if n > 0 {
			b.maxTokens = n
		}
	}
}

func NewBedrock(client InvokeModelAPI, modelID string, opts ...BedrockOption) (*Bedrock, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock client is required")
	}
	if modelID == "" {
		modelID = DefaultModelID
	}
	b := &Bedrock{
		client:    client,
		modelID:   modelID,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type invokeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type invokeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// modelVerdict is the JSON shape the prompt asks for.
type modelVerdict struct {
	IsReal          *bool    `json:"isReal"`
	Confidence      *float64 `json:"confidence"`
	Platform        string   `json:"platform"`
	Crypto          string   `json:"crypto"`
	DetectedAddress string   `json:"detectedAddress"`
	Reason          string   `json:"reason"`
}

// Classify sends the artifact and the verification prompt to the model.
func (b *Bedrock) Classify(ctx context.Context, input models.ClassifyInput) (claimmodels.Verdict, error) {
	body, err := json.Marshal(invokeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: input.MimeType,
						Data:      base64.StdEncoding.EncodeToString(input.Artifact),
					},
				},
				{Type: "text", Text: BuildPrompt(b.addresses, input.ExpectedAmount)},
			},
		}},
	})
	if err != nil {
		return claimmodels.Verdict{}, fmt.Errorf("marshal bedrock request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return claimmodels.Verdict{}, fmt.Errorf("bedrock invoke: %w", err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return claimmodels.Verdict{}, fmt.Errorf("decode bedrock response: %w", err)
	}
	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return ParseVerdict(text.String())
}

// ParseVerdict reads the model's JSON reply, tolerating markdown code fences
// and prose around the object.
func ParseVerdict(reply string) (claimmodels.Verdict, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return claimmodels.Verdict{}, ErrMalformedVerdict
	}

	var mv modelVerdict
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &mv); err != nil {
		return claimmodels.Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if mv.IsReal == nil || mv.Confidence == nil {
		return claimmodels.Verdict{}, fmt.Errorf("%w: isReal and confidence are required", ErrMalformedVerdict)
	}
	reason := mv.Reason
	if reason == "" {
		reason = strings.TrimSpace(strings.Join([]string{mv.Platform, mv.Crypto}, " "))
	}
	return claimmodels.Verdict{
		IsAuthentic: *mv.IsReal,
		Confidence:  *mv.Confidence,
		Reason:      reason,
	}.Clamp(), nil
}
