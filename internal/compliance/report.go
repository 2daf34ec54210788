package compliance

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

var severityHeadings = []struct {
	severity Severity
	heading  string
}{
	{SeverityError, "Errors"},
	{SeverityWarning, "Warnings"},
	{SeverityInfo, "Suggestions"},
}

// Markdown renders res as a human-readable report grouped by severity.
func Markdown(title string, res Result) string {
	var b strings.Builder
	if title == "" {
		title = "Untitled deck"
	}
	fmt.Fprintf(&b, "# Compliance: %s\n\n", escapeMarkdown(title))
	if res.Compliant {
		b.WriteString("**Compliant.** Export is allowed.\n\n")
	} else {
		b.WriteString("**Not compliant.** Export is blocked until the errors below are fixed.\n\n")
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s), %d suggestion(s)\n", res.Summary.Errors, res.Summary.Warnings, res.Summary.Info)

	for _, h := range severityHeadings {
		var section []Issue
		for _, is := range res.Issues {
			if is.Type == h.severity {
				section = append(section, is)
			}
		}
		if len(section) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", h.heading)
		for _, is := range section {
			b.WriteString("- ")
			if is.SlideIndex != nil {
				fmt.Fprintf(&b, "Slide %d: ", *is.SlideIndex+1)
			}
			b.WriteString(escapeMarkdown(is.Message))
			if is.Fix != "" {
				fmt.Fprintf(&b, " *Fix:* %s", escapeMarkdown(is.Fix))
			}
			fmt.Fprintf(&b, " `%s`\n", is.ID)
		}
	}
	return b.String()
}

// RenderHTML converts the Markdown report to HTML.
func RenderHTML(title string, res Result) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(title, res)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"<", `\<`,
	"[", `\[`,
	"#", `\#`,
)

// escapeMarkdown neutralises characters that would change the report's
// structure when user text is embedded in it.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
