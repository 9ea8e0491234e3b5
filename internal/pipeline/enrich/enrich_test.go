package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/rag/llm"
)

type mockProvider struct {
	onGenerate func(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	if m.onGenerate != nil {
		return m.onGenerate(ctx, prompt, opts)
	}
	return "", nil
}

func rawChunk(text string) chunkmodel.RawChunk {
	return chunkmodel.RawChunk{DocumentSource: "guide.pdf", Text: text, SequenceIndex: 0}
}

func TestEnrich_ParsesStructuredResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "Plain_JSON",
			response: `{"title":"Build Timeline","summary":"Typical build stages.","keywords":["timeline","stages"],"category":"Building Process","importance":8}`,
		},
		{
			name: "Fenced_JSON",
			response: "```json\n" +
				`{"title":"Build Timeline","summary":"Typical build stages.","keywords":["timeline","stages"],"category":"Building Process","importance":8}` +
				"\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{
				onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
					return tt.response, nil
				},
			}
			meta := New(provider).Enrich(context.Background(), rawChunk("some chunk text"))

			if meta.Title != "Build Timeline" {
				t.Errorf("Title got %q", meta.Title)
			}
			if meta.Category != chunkmodel.CategoryBuildingProcess {
				t.Errorf("Category got %q", meta.Category)
			}
			if meta.Importance != 8 {
				t.Errorf("Importance got %d", meta.Importance)
			}
			if len(meta.Keywords) != 2 {
				t.Errorf("Keywords got %v", meta.Keywords)
			}
		})
	}
}

func TestEnrich_PromptEmbedsChunkAndCategories(t *testing.T) {
	var captured string
	provider := &mockProvider{
		onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
			captured = prompt
			return `{"title":"T","summary":"S","keywords":[],"category":"FAQ","importance":5}`, nil
		},
	}

	New(provider).Enrich(context.Background(), rawChunk("the chunk body under analysis"))

	if !strings.Contains(captured, "the chunk body under analysis") {
		t.Error("Prompt does not embed the chunk text")
	}
	for _, c := range chunkmodel.AllCategories {
		if !strings.Contains(captured, string(c)) {
			t.Errorf("Prompt missing category %q", c)
		}
	}
}

func TestEnrich_FallbackScenarios(t *testing.T) {
	longText := strings.Repeat("abcdefghij", 20) // 200 chars
	// 240 runes of multibyte text
	accentedText := strings.Repeat("café resumé ", 20)

	tests := []struct {
		name        string
		text        string
		wantSummary string
		onGenerate  func(ctx context.Context, prompt string, opts llm.Options) (string, error)
	}{
		{
			name:        "Call_Fails",
			text:        longText,
			wantSummary: longText[:100],
			onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
				return "", errors.New("quota exhausted")
			},
		},
		{
			name:        "Unparsable_Response",
			text:        longText,
			wantSummary: longText[:100],
			onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
				return "Sure! Here is the analysis you asked for.", nil
			},
		},
		{
			name:        "Empty_Object",
			text:        longText,
			wantSummary: longText[:100],
			onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
				return "{}", nil
			},
		},
		{
			name:        "Multibyte_Text",
			text:        accentedText,
			wantSummary: string([]rune(accentedText)[:100]),
			onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
				return "", errors.New("quota exhausted")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{onGenerate: tt.onGenerate}
			meta := New(provider).Enrich(context.Background(), rawChunk(tt.text))

			if meta.Title != "General Information" {
				t.Errorf("Fallback title got %q", meta.Title)
			}
			if meta.Summary != tt.wantSummary {
				t.Errorf("Fallback summary must be the first 100 characters, got %q", meta.Summary)
			}
			if utf8.RuneCountInString(meta.Summary) != 100 || !utf8.ValidString(meta.Summary) {
				t.Errorf("Fallback summary is %d runes, valid=%v", utf8.RuneCountInString(meta.Summary), utf8.ValidString(meta.Summary))
			}
			if len(meta.Keywords) != 0 {
				t.Errorf("Fallback keywords got %v", meta.Keywords)
			}
			if meta.Category != chunkmodel.CategoryGeneral {
				t.Errorf("Fallback category got %q", meta.Category)
			}
			if meta.Importance != 5 {
				t.Errorf("Fallback importance got %d", meta.Importance)
			}
		})
	}
}

func TestEnrich_ClampsImportance(t *testing.T) {
	provider := &mockProvider{
		onGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
			return `{"title":"T","summary":"S","keywords":[],"category":"General","importance":42}`, nil
		},
	}
	meta := New(provider).Enrich(context.Background(), rawChunk("text"))
	if meta.Importance != 10 {
		t.Errorf("Importance got %d, want clamped to 10", meta.Importance)
	}
}

func TestFallback_ShortText(t *testing.T) {
	meta := Fallback("short")
	if meta.Summary != "short" {
		t.Errorf("Summary got %q", meta.Summary)
	}
}
