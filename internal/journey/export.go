package journey

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

var groupTitles = map[string]string{
	GroupToday:    "Today",
	GroupThisWeek: "This week",
	GroupEarlier:  "Earlier",
}

var kindLabels = map[Kind]string{
	KindHighlight:     "Highlight",
	KindNote:          "Note",
	KindGuidedSession: "Guided session",
	KindGuidedInsight: "Insight",
	KindBookmark:      "Bookmark",
}

// RenderMarkdown writes the grouped journey as a markdown document.
// Empty groups are skipped.
func RenderMarkdown(title string, groups []Group) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n", oneLine(title))

	empty := true
	for _, g := range groups {
		if len(g.Items) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(&b, "\n## %s\n", groupTitle(g.Name))
		for _, item := range g.Items {
			writeItem(&b, item)
		}
	}
	if empty {
		b.WriteString("\nNothing in your journey matches the current filters.\n")
	}
	return b.Bytes()
}

func writeItem(b *bytes.Buffer, item UnifiedItem) {
	heading := item.Ref.Display
	if item.Title != nil && *item.Title != "" {
		heading = *item.Title
	}
	if item.Pinned {
		heading += " (pinned)"
	}
	fmt.Fprintf(b, "\n### %s\n\n", oneLine(heading))

	meta := []string{kindLabel(item.Kind), oneLine(item.Ref.Display)}
	if item.TextName != nil {
		meta = append(meta, oneLine(*item.TextName))
	}
	meta = append(meta, item.UpdatedAt.Format(time.DateOnly))
	fmt.Fprintf(b, "*%s*\n", strings.Join(meta, " · "))

	if item.Quote != nil && *item.Quote != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(*item.Quote, "\n") {
			fmt.Fprintf(b, "> %s\n", line)
		}
	}
	if item.Body != nil && *item.Body != "" {
		fmt.Fprintf(b, "\n%s\n", *item.Body)
	}
	if len(item.Tags) > 0 {
		tags := make([]string, len(item.Tags))
		for i, tag := range item.Tags {
			tags[i] = "`" + oneLine(tag) + "`"
		}
		fmt.Fprintf(b, "\nTags: %s\n", strings.Join(tags, " "))
	}
}

// oneLine collapses runs of whitespace, newlines included, so a value cannot
// start a new markdown block.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func groupTitle(name string) string {
	if t, ok := groupTitles[name]; ok {
		return t
	}
	return name
}

func kindLabel(k Kind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}
