// Package summarize turns extracted document text into an ordered list of
// short bullets using section-aware lexical heuristics.
//
// The output keeps source order: a few leading header lines, then one bullet
// per detected section heading of the form "heading — key line". Cover page
// and revision-table noise before the first real heading is skipped.
package summarize

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Separator joins a heading and its key line inside a bullet.
const Separator = " — "

const ellipsis = "..."

// Summarize returns at most opts.BulletsMax bullets for text. It is pure:
// the same text and options always yield the same bullets.
func Summarize(text string, opts Options) []string {
	paras := Paragraphs(text)
	if len(paras) == 0 || opts.BulletsMax <= 0 {
		return []string{}
	}

	header := pickHeader(paras, opts)
	body := paras[bodyStart(paras, opts):]

	var headings []int
	for i, p := range body {
		if IsHeading(p, opts) {
			headings = append(headings, i)
		}
	}

	if len(headings) == 0 {
		n := min(len(body), max(0, opts.BulletsMax-len(header)))
		picked := append(slices.Clone(header), body[:n]...)
		return finalize(picked, opts)
	}

	out := slices.Clone(header)
	for i, hi := range headings {
		next := len(body)
		if i+1 < len(headings) {
			next = headings[i+1]
		}
		heading := body[hi]
		if key, ok := keyLine(body[hi+1:next], opts); ok {
			out = append(out, heading+Separator+truncate(key, opts.BulletMaxLen))
		} else {
			out = append(out, heading)
		}
		if len(out) >= opts.BulletsMax {
			break
		}
	}
	return finalize(out, opts)
}

// Paragraphs splits text on line boundaries and returns the trimmed,
// non-empty paragraphs in their original order.
func Paragraphs(text string) []string {
	lines := strings.FieldsFunc(text, isLineBreak)
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// IsHeading reports whether paragraph looks like a section title: it names
// a known heading, or it is short and carries no sentence punctuation or date.
func IsHeading(paragraph string, opts Options) bool {
	s := strings.TrimSpace(paragraph)
	if s == "" || slices.Contains(opts.StopLabels, s) {
		return false
	}
	if containsAny(s, opts.KnownHeadings) {
		return true
	}
	if utf8.RuneCountInString(s) > opts.HeadingMaxLen {
		return false
	}
	return opts.Punctuation == nil || !opts.Punctuation.MatchString(s)
}

// pickHeader collects the title-ish leading paragraphs.
func pickHeader(paras []string, opts Options) []string {
	window := paras[:min(len(paras), opts.HeaderWindow)]
	var header []string
	for _, p := range window {
		if len(header) >= opts.HeaderLines {
			break
		}
		if slices.Contains(opts.StopLabels, p) || containsAny(p, opts.StopContains) {
			continue
		}
		header = append(header, p)
	}
	return header
}

// bodyStart returns the index of the first known heading, falling back to
// the first heading candidate and then to the document start.
func bodyStart(paras []string, opts Options) int {
	for i, p := range paras {
		if containsAny(p, opts.KnownHeadings) {
			return i
		}
	}
	for i, p := range paras {
		if IsHeading(p, opts) {
			return i
		}
	}
	return 0
}

// keyLine picks the first section paragraph with a focus keyword, otherwise
// the first non-boilerplate paragraph.
func keyLine(section []string, opts Options) (string, bool) {
	for _, p := range section {
		if containsAny(p, opts.Focus) {
			return strings.TrimSpace(p), true
		}
	}
	for _, p := range section {
		s := strings.TrimSpace(p)
		if s == "" || slices.Contains(opts.StopLabels, s) {
			continue
		}
		return s, true
	}
	return "", false
}

// finalize truncates, drops repeats keeping the first occurrence, and caps
// the result at BulletsMax.
func finalize(bullets []string, opts Options) []string {
	seen := make(map[string]struct{}, len(bullets))
	out := make([]string, 0, min(len(bullets), opts.BulletsMax))
	for _, b := range bullets {
		b = truncate(b, opts.BulletMaxLen)
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
		if len(out) == opts.BulletsMax {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= len(ellipsis) {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-len(ellipsis)]) + ellipsis
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
