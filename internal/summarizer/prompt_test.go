package summarizer_test

import (
	"strings"
	"testing"

	"docsummarizer/internal/summarizer"
)

func TestBuildPromptContentEmbedsContentVerbatim(t *testing.T) {
	content := "Revenue grew 10%."

	p := summarizer.BuildPrompt(summarizer.ModeContent, "reports/q1.txt", content)

	if !strings.HasSuffix(p.User, "\n"+content) {
		t.Fatalf("expected user prompt to end with the content, got %q", p.User)
	}
	if !strings.Contains(p.System, "繁體中文") {
		t.Fatalf("expected system prompt to demand Traditional Chinese, got %q", p.System)
	}

	assertTemplate(t, p.User)
}

func TestBuildPromptFilenameUsesBaseName(t *testing.T) {
	p := summarizer.BuildPrompt(summarizer.ModeFilename, "papers/2024/deep learning.pdf", "ignored")

	if !strings.Contains(p.User, "'deep learning.pdf'") {
		t.Fatalf("expected file name in prompt, got %q", p.User)
	}
	if strings.Contains(p.User, "papers/2024") {
		t.Fatalf("expected directory to be stripped, got %q", p.User)
	}
	if strings.Contains(p.User, "ignored") {
		t.Fatalf("expected content to be ignored in filename mode")
	}

	assertTemplate(t, p.User)
}

func assertTemplate(t *testing.T, user string) {
	t.Helper()

	summaryAt := strings.Index(user, summarizer.HeadingSummary+"\n")
	fieldsAt := strings.Index(user, summarizer.HeadingFields+"\n* ")
	keywordsAt := strings.Index(user, summarizer.HeadingKeyword+"\n* ")

	if summaryAt < 0 || fieldsAt < 0 || keywordsAt < 0 {
		t.Fatalf("expected all three sections with bullets, got %q", user)
	}
	if summaryAt >= fieldsAt || fieldsAt >= keywordsAt {
		t.Fatalf("expected sections in summary, fields, keywords order")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]summarizer.Mode{
		"":          summarizer.ModeContent,
		"content":   summarizer.ModeContent,
		" FILENAME": summarizer.ModeFilename,
	}

	for in, want := range cases {
		got, err := summarizer.ParseMode(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("unexpected mode for %q: got %q want %q", in, got, want)
		}
	}

	if _, err := summarizer.ParseMode("chunked"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestNewCompletionRequest(t *testing.T) {
	p := summarizer.Prompt{System: "sys", User: "usr"}

	req := summarizer.NewCompletionRequest(summarizer.DefaultModel, p)

	if req.Model != summarizer.DefaultModel {
		t.Fatalf("unexpected model: %q", req.Model)
	}
	if req.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", req.Temperature)
	}
	if len(req.Messages) != 2 ||
		req.Messages[0] != (summarizer.Message{Role: summarizer.RoleSystem, Content: "sys"}) ||
		req.Messages[1] != (summarizer.Message{Role: summarizer.RoleUser, Content: "usr"}) {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
}
