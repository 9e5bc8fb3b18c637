package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements that become paragraphs, in document order.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, dt, dd, pre, blockquote"

// HTML returns the block-level text of an HTML document. Scripts, styles and
// navigation chrome are ignored. A block that wraps other blocks emits its
// own text first, then each nested block in order.
func HTML(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	var paras []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			s = s.Clone()
			s.Find(blockSelector).Remove()
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			paras = append(paras, text)
		}
	})
	return paras, nil
}
