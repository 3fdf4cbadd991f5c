package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"hairfit/internal/domain"
)

func TestImageFormat(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": "jpeg",
		"IMAGE/JPG":  "jpeg",
		"image/webp": "webp",
		"image/png":  "png",
		"":           "png",
	}
	for in, want := range cases {
		if got := imageFormat(in); got != want {
			t.Fatalf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstImageSkipsText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("here you go")}}},
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Text("composite:"),
				genai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}},
			}}},
		},
	}
	blob, err := firstImage(resp)
	if err != nil {
		t.Fatalf("firstImage: %v", err)
	}
	if blob.MIMEType != "image/png" || len(blob.Data) != 3 {
		t.Fatalf("blob = %+v", blob)
	}
}

func TestFirstImageNone(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil", resp: nil},
		{name: "text only", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("sorry")}}},
		}}},
		{name: "blocked", resp: &genai.GenerateContentResponse{
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
		}},
		{name: "empty blob", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
		}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := firstImage(tc.resp); !errors.Is(err, ErrNoImage) {
				t.Fatalf("err = %v, want ErrNoImage", err)
			}
		})
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), Options{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Synthesize(context.Background(), domain.RawBinary{Data: []byte{1}}, "style_1")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v", err)
	}
}
