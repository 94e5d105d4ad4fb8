package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

// FallbackTitle is used when a draft has no usable first line.
const FallbackTitle = "New Issue"

const maxTitleRunes = 100

var (
	typedTitlePattern = regexp.MustCompile(`(?m)^\[(?:Bug|Feature)\][ \t]*\S.*$`)
	severityPattern   = regexp.MustCompile(`(?i)(?:严重程度|severity)[ \t]*[：:][ \t]*(P[0-3])`)
	priorityPattern   = regexp.MustCompile(`(?i)(?:优先级|priority)[ \t]*[：:][ \t]*(高|中|低|high|medium|low)`)
)

var priorityLabels = map[string]string{
	"高":      "priority::high",
	"中":      "priority::medium",
	"低":      "priority::low",
	"high":   "priority::high",
	"medium": "priority::medium",
	"low":    "priority::low",
}

// ExtractTitle returns the first "[Bug] ..." or "[Feature] ..." line of a
// draft. Without one it falls back to the first line, cut to 100 characters.
func ExtractTitle(content string) string {
	if line := typedTitlePattern.FindString(content); line != "" {
		return strings.TrimSpace(line)
	}

	firstLine, _, _ := strings.Cut(content, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if runes := []rune(firstLine); len(runes) > maxTitleRunes {
		firstLine = string(runes[:maxTitleRunes])
	}
	if firstLine == "" {
		return FallbackTitle
	}
	return firstLine
}

// ExtractLabels derives GitLab labels from the template markers in a draft.
// Labels come back in rule order and each rule contributes at most one.
func ExtractLabels(content string) []string {
	labels := make([]string, 0, 4)

	if strings.Contains(content, "["+string(model.IssueTypeBug)+"]") {
		labels = append(labels, "bug")
	}
	if strings.Contains(content, "["+string(model.IssueTypeFeature)+"]") {
		labels = append(labels, "feature")
	}

	if m := severityPattern.FindStringSubmatch(content); m != nil {
		labels = append(labels, strings.ToLower(m[1]))
	}

	if m := priorityPattern.FindStringSubmatch(content); m != nil {
		labels = append(labels, priorityLabels[strings.ToLower(m[1])])
	}

	filtered := labels[:0]
	for _, l := range labels {
		if l != "" {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// ComposeDescription appends screenshots to the draft as inline images.
func ComposeDescription(content string, images []model.Image) string {
	if len(images) == 0 {
		return content
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n---\n\n### 截图\n")
	for i, img := range images {
		fmt.Fprintf(&b, "![截图 %d](%s)\n\n", i+1, img.DataURL())
	}
	return b.String()
}
