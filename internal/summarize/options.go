package summarize

import "regexp"

// DefaultPunctuation matches sentence-level punctuation and slash dates.
// A short paragraph containing any of these is body text, not a heading.
const DefaultPunctuation = `[。．\.,:：;；\(\)\[\]{}<>]|\d{4}/\d{2}/\d{2}`

// Options drives the heuristic. All keyword lists are matched literally;
// lengths count runes.
type Options struct {
	// BulletsMax caps the number of bullets returned.
	BulletsMax int
	// KnownHeadings are section-title keywords; a paragraph containing one is
	// always a heading and the first such paragraph starts the body.
	KnownHeadings []string
	// StopLabels are exact boilerplate paragraphs (revision tables and the like).
	StopLabels []string
	// StopContains drops header paragraphs containing any of these substrings.
	StopContains []string
	// Focus keywords pick the key line of a section.
	Focus []string
	// HeadingMaxLen is the longest unpunctuated paragraph still treated as a heading.
	HeadingMaxLen int
	// BulletMaxLen truncates every bullet, ellipsis included.
	BulletMaxLen int
	// HeaderLines leading bullets are taken from the first HeaderWindow paragraphs.
	HeaderLines  int
	HeaderWindow int
	// Punctuation marks a short paragraph as body text.
	Punctuation *regexp.Regexp
}

// DefaultOptions returns the options used when configuration leaves them unset.
func DefaultOptions() Options {
	return Options{
		BulletsMax: 8,
		KnownHeadings: []string{
			"本文書について",
			"適用文書",
			"参考文書",
			"前提条件",
			"解析手法",
			"解析方法",
			"結果",
			"結論",
			"目的",
			"概要",
		},
		StopLabels:    []string{"Revision List", "改訂", "変更内容", "著者", "日付"},
		StopContains:  []string{"Revision List"},
		HeadingMaxLen: 18,
		BulletMaxLen:  160,
		HeaderLines:   3,
		HeaderWindow:  12,
		Punctuation:   regexp.MustCompile(DefaultPunctuation),
	}
}
