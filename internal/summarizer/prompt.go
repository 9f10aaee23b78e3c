package summarizer

import (
	"fmt"
	"path"
	"strings"
)

// Section headings and the bullet marker are read by whatever consumes the
// summary artifact. Do not change them.
const (
	HeadingSummary = "**摘要**"
	HeadingFields  = "**相關領域**"
	HeadingKeyword = "**關鍵字**"
	BulletMarker   = "* "
)

type Mode string

const (
	// ModeContent summarizes the fetched document text.
	ModeContent Mode = "content"
	// ModeFilename writes a report from the object name alone.
	ModeFilename Mode = "filename"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeContent:
		return ModeContent, nil
	case ModeFilename:
		return ModeFilename, nil
	default:
		return "", fmt.Errorf("unknown prompt mode %q (want %q or %q)", s, ModeContent, ModeFilename)
	}
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// Prompt is the system instruction plus the user message.
type Prompt struct {
	System string
	User   string
}

const (
	contentSystemPrompt  = "你是一個專業的學術研究助理，擅長撰寫口氣堅定的繁體中文摘要。"
	filenameSystemPrompt = "你是一個專業的學術研究助理。口氣必須堅定、斷言，絕對不要使用推測性詞彙。請使用繁體中文回答。"
)

// BuildPrompt assembles the prompt for key. content is ignored in
// ModeFilename and must already be truncated in ModeContent.
func BuildPrompt(mode Mode, key string, content string) Prompt {
	if mode == ModeFilename {
		return Prompt{System: filenameSystemPrompt, User: filenameUserPrompt(key)}
	}

	return Prompt{System: contentSystemPrompt, User: contentUserPrompt(content)}
}

func contentUserPrompt(content string) string {
	b := strings.Builder{}
	b.WriteString("請針對以下內容撰寫一份研究摘要。\n")
	b.WriteString("要求：\n")
	b.WriteString("1. 使用繁體中文。\n")
	b.WriteString("2. 語氣必須堅定且專業。\n")
	b.WriteString("3. 格式必須嚴格遵守：\n")
	writeTemplate(&b, "(摘要內容)")
	b.WriteString("\n內容如下：\n")
	b.WriteString(content)

	return b.String()
}

func filenameUserPrompt(key string) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "檔案名稱：'%s'。\n\n", path.Base(key))
	b.WriteString("請直接以「學術研究報告」的權威口吻，針對此主題撰寫內容。格式必須嚴格遵守：\n\n")
	writeTemplate(&b, "本文是一份關於...的研究報告，探討了...。文中使用...，通過分析...，實現了...。研究結果表明，該...能夠...，提高了...。")
	b.WriteString("\n規則：語氣要堅定，直接斷言，不要有「這可能是」之類的廢話。")

	return b.String()
}

// writeTemplate writes the three-section answer skeleton shared by both modes.
// The field and keyword lines carry counts instead of numbered placeholders.
func writeTemplate(b *strings.Builder, summaryHint string) {
	b.WriteString(HeadingSummary + "\n")
	b.WriteString(summaryHint + "\n\n")
	b.WriteString(HeadingFields + "\n")
	b.WriteString(BulletMarker + "(列出 3-4 個領域)\n\n")
	b.WriteString(HeadingKeyword + "\n")
	b.WriteString(BulletMarker + "(列出 5 個精確關鍵字)\n")
}
