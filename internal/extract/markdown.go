package extract

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// Markdown returns the lines of a Markdown file. YAML frontmatter is
// dropped, its "title" (if any) becomes the first line, and heading markers
// are stripped so headings reach the summarizer as bare titles.
func Markdown(path string) ([]string, error) {
	s, err := readText(path)
	if err != nil {
		return nil, err
	}
	fm, body := splitFrontmatter(s)

	var lines []string
	if title, ok := fm["title"].(string); ok && strings.TrimSpace(title) != "" {
		lines = append(lines, title)
	}
	for _, ln := range strings.Split(body, "\n") {
		if trimmed := strings.TrimLeft(ln, "#"); len(trimmed) < len(ln) && strings.HasPrefix(trimmed, " ") {
			ln = trimmed
		}
		lines = append(lines, ln)
	}
	return lines, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Missing, unterminated or invalid frontmatter leaves the
// whole content as body.
func splitFrontmatter(s string) (map[string]any, string) {
	trimmed := strings.TrimLeft(s, "\n")
	if !strings.HasPrefix(trimmed, frontmatterDelim+"\n") {
		return nil, s
	}

	rest := trimmed[len(frontmatterDelim):]
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return nil, s
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return nil, s
	}
	body := rest[idx+1+len(frontmatterDelim):]
	return fm, strings.TrimLeft(body, "\n")
}
