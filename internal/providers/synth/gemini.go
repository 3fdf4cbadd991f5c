// Package synth produces hairstyle composites with a remote multimodal model.
package synth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

// ErrMissingAPIKey indicates that the provider was configured without credentials.
var ErrMissingAPIKey = errors.New("synth: api key is required")

// ErrNoImage means the model answered without an image part.
var ErrNoImage = errors.New("synth: model returned no image")

const defaultModel = "gemini-2.5-flash-image"

const basePrompt = `You are given two photos. The first is a salon client. The second is a reference hairstyle.
Render the client with the reference hairstyle applied.
Keep the client's face, skin tone, expression, pose, clothing and background unchanged.
Match the hairstyle's cut, length, volume and color. Return a single photorealistic image.`

// StyleImages supplies reference style images by id.
type StyleImages interface {
	ReadImage(id string) (domain.RawBinary, error)
}

// Options configures the Gemini provider.
type Options struct {
	APIKey string
	Model  string
	Styles StyleImages
	Logger *infra.Logger
}

// Gemini implements domain.Synthesizer against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	styles StyleImages
	logger *infra.Logger
}

// NewGemini dials the Gemini API.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Styles == nil {
		return nil, errors.New("synth: style images are required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("synth: create gemini client: %w", err)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	return &Gemini{client: client, model: model, styles: opts.Styles, logger: infra.OrNop(opts.Logger)}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Synthesize returns the composite as base64 (no data URI header).
func (g *Gemini) Synthesize(ctx context.Context, photo domain.RawBinary, styleID string) (string, error) {
	if photo.Empty() {
		return "", errors.New("synth: client photo is empty")
	}
	style, err := g.styles.ReadImage(styleID)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	parts := []genai.Part{
		genai.Text(basePrompt),
		genai.ImageData(imageFormat(photo.MIME()), photo.Data),
		genai.ImageData(imageFormat(style.MIME()), style.Data),
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("synth: generate content: %w", err)
	}
	blob, err := firstImage(resp)
	if err != nil {
		g.logger.Warn().Err(err).Str("style_id", styleID).Str("model", g.model).Msg("synthesis produced no image")
		return "", err
	}
	g.logger.Debug().
		Str("style_id", styleID).
		Str("mime", blob.MIMEType).
		Int("bytes", len(blob.Data)).
		Msg("synthesis image received")
	return base64.StdEncoding.EncodeToString(blob.Data), nil
}

// imageFormat maps a MIME type to the format token genai.ImageData expects.
func imageFormat(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	default:
		return "png"
	}
}

// firstImage returns the first inline image part of the first candidate that
// has one. Text parts (model commentary) are skipped.
func firstImage(resp *genai.GenerateContentResponse) (genai.Blob, error) {
	if resp == nil {
		return genai.Blob{}, ErrNoImage
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return genai.Blob{}, fmt.Errorf("%w: prompt blocked (%v)", ErrNoImage, fb.BlockReason)
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") && len(blob.Data) > 0 {
				return blob, nil
			}
		}
	}
	return genai.Blob{}, ErrNoImage
}

// Disabled stands in when no API key is configured.
type Disabled struct{}

// Synthesize always fails with ErrMissingAPIKey.
func (Disabled) Synthesize(context.Context, domain.RawBinary, string) (string, error) {
	return "", ErrMissingAPIKey
}

var (
	_ domain.Synthesizer = (*Gemini)(nil)
	_ domain.Synthesizer = Disabled{}
)
