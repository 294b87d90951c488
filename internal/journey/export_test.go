package journey

import (
	"strings"
	"testing"
	"time"

	"scripture-journey/internal/scripture"
)

func TestRenderMarkdown(t *testing.T) {
	ref := scripture.Ref{ScriptureID: "bible", BookID: "john", Chapter: 3, VerseStart: intPtr(16), Display: "John 3:16"}
	groups := []Group{
		{Name: GroupToday, Items: []UnifiedItem{{
			ID: "i1", Kind: KindGuidedInsight, Ref: ref,
			Title:     strPtr("Love first"),
			Body:      strPtr("God acts before we do."),
			Quote:     strPtr("For God so loved\nthe world"),
			Pinned:    true,
			UpdatedAt: baseTime,
		}}},
		{Name: GroupThisWeek},
		{Name: GroupEarlier, Items: []UnifiedItem{{
			ID: "h1", Kind: KindHighlight, Ref: ref,
			TextName:  strPtr("KJV"),
			Tags:      []string{"love", "gospel"},
			UpdatedAt: baseTime.Add(-30 * 24 * time.Hour),
		}}},
	}

	got := string(RenderMarkdown("My journey", groups))

	for _, want := range []string{
		"# My journey\n",
		"\n## Today\n",
		"\n### Love first (pinned)\n",
		"*Insight · John 3:16 · 2026-10-15*\n",
		"> For God so loved\n> the world\n",
		"\nGod acts before we do.\n",
		"\n## Earlier\n",
		"\n### John 3:16\n",
		"*Highlight · John 3:16 · KJV · 2026-09-15*\n",
		"Tags: `love` `gospel`\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMarkdown() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "This week") {
		t.Error("RenderMarkdown() should skip empty groups")
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	got := string(RenderMarkdown("Journey", GroupByTime(nil, baseTime)))
	if !strings.Contains(got, "Nothing in your journey matches") {
		t.Errorf("RenderMarkdown() = %q, want empty notice", got)
	}
}

func TestRenderMarkdown_CollapsesNewlinesInHeadings(t *testing.T) {
	ref := scripture.Ref{ScriptureID: "bible", BookID: "john", Chapter: 3, Display: "John\n# 3"}
	groups := []Group{{Name: GroupToday, Items: []UnifiedItem{{
		ID: "i1", Kind: KindGuidedInsight, Ref: ref,
		Title:     strPtr("x\n## injected"),
		TextName:  strPtr("KJV\r\n---"),
		UpdatedAt: baseTime,
	}}}}

	got := string(RenderMarkdown("Journey\n## fake", groups))

	for _, want := range []string{
		"# Journey ## fake\n",
		"\n### x ## injected\n",
		"*Insight · John # 3 · KJV --- · 2026-10-15*\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMarkdown() missing %q in:\n%s", want, got)
		}
	}
	for _, line := range strings.Split(got, "\n") {
		if line == "## injected" || line == "## fake" || line == "---" || line == "# 3" {
			t.Errorf("RenderMarkdown() emitted injected line %q", line)
		}
	}
}
