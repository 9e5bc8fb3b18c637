package extract

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/testutil"
)

func TestDocx_BodyParagraphs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.docx")
	testutil.WriteDocx(t, p, "結論", "  ", "リスクは低い。", "a < b & c")

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "結論\nリスクは低い。\na < b & c"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestDocx_SkipsTablesKeepsBreaks(t *testing.T) {
	xmlBody := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Title</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>改訂</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>one</w:t><w:tab/><w:t>two</w:t><w:br/><w:t>three</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	paras, err := docxParagraphs(strings.NewReader(xmlBody))
	if err != nil {
		t.Fatalf("docxParagraphs: %v", err)
	}
	if len(paras) != 2 {
		t.Fatalf("paras = %q, want 2 body paragraphs", paras)
	}
	if paras[0] != "Title" || paras[1] != "one\ttwo\nthree" {
		t.Errorf("paras = %q", paras)
	}
}

func TestDocx_NotAZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.docx")
	testutil.WriteFile(t, p, []byte("not a zip"))

	_, err := NewRegistry(0).Extract(p)
	if !errors.Is(err, apperr.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestHTML_Blocks(t *testing.T) {
	p := filepath.Join(t.TempDir(), "page.html")
	testutil.WriteFile(t, p, []byte(`<html><head><style>p{}</style></head><body>
<nav><p>menu</p></nav>
<h1>概要</h1>
<p>本書は   概要を
述べる。</p>
<ul><li><p>item one</p></li><li>item two</li></ul>
<script>var x = 1;</script>
</body></html>`))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "概要\n本書は 概要を 述べる。\nitem one\nitem two"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestText_MarkdownHeadings(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.md")
	testutil.WriteFile(t, p, []byte("\ufeff# 結論\r\n\r\nリスクは低い。\r\n#hashtag\n"))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "結論\nリスクは低い。\n#hashtag"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestRegistry_MaxChars(t *testing.T) {
	p := filepath.Join(t.TempDir(), "long.txt")
	testutil.WriteFile(t, p, []byte(strings.Repeat("あ", 30)))

	got, err := NewRegistry(10).Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != strings.Repeat("あ", 10) {
		t.Errorf("text = %q, want 10 runes", got)
	}
}

func TestRegistry_UnsupportedType(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sheet.xlsx")
	testutil.WriteFile(t, p, []byte("x"))
	_, err := NewRegistry(0).Extract(p)
	if !errors.Is(err, apperr.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestRegistry_CustomReader(t *testing.T) {
	r := NewRegistry(0)
	r.Register(".DOC", func(string) ([]string, error) { return []string{" a ", "", "b"}, nil })
	got, err := r.Extract("legacy.doc")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a\nb" {
		t.Errorf("text = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abc", 5); got != "abc" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("日本語です", 2); got != "日本" {
		t.Errorf("Truncate runes = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("Truncate zero = %q", got)
	}
}

func TestMarkdown_Frontmatter(t *testing.T) {
	p := filepath.Join(t.TempDir(), "report.md")
	testutil.WriteFile(t, p, []byte("---\ntitle: 設計解析報告書\ntags: [a]\n---\n\n## 結論\nリスクは低い。\n"))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if want := "設計解析報告書\n結論\nリスクは低い。"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestMarkdown_InvalidFrontmatterIsBody(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.md")
	testutil.WriteFile(t, p, []byte("---\n: [unclosed\n---\n本文。\n"))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if want := "---\n: [unclosed\n---\n本文。"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestText_KeepsHashLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plain.txt")
	testutil.WriteFile(t, p, []byte("# not a heading here\nline\n"))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "# not a heading here\nline" {
		t.Errorf("text = %q", got)
	}
}

func TestDocx_TextBoxKeepsOuterParagraph(t *testing.T) {
	xmlBody := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>before</w:t></w:r>` +
		`<w:r><w:pict><w:txbxContent><w:p><w:r><w:t>boxed</w:t><w:tab/></w:r></w:p></w:txbxContent></w:pict></w:r>` +
		`<w:r><w:t>after</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>next</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	paras, err := docxParagraphs(strings.NewReader(xmlBody))
	if err != nil {
		t.Fatalf("docxParagraphs: %v", err)
	}
	if len(paras) != 2 || paras[0] != "beforeafter" || paras[1] != "next" {
		t.Errorf("paras = %q, want [beforeafter next]", paras)
	}
}

func TestHTML_WrappingBlockKeepsOwnText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "list.html")
	testutil.WriteFile(t, p, []byte(`<ul><li>lead <p>child</p></li></ul><blockquote><p>quoted</p></blockquote>`))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "lead\nchild\nquoted"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestText_ShiftJIS(t *testing.T) {
	body := strings.Repeat("目的\nこの文書は、構造解析の手順と結果をまとめたものです。\n"+
		"結論\nリスクは低いと判断しました。これからも、しっかりと確認していきます。\n", 4)
	encoded, err := japanese.ShiftJIS.NewEncoder().String(body)
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "sjis.txt")
	testutil.WriteFile(t, p, []byte(encoded))

	got, err := NewRegistry(0).Extract(p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(got, "目的\nこの文書は、構造解析の手順と結果をまとめたものです。\n結論") {
		t.Errorf("text = %q", got)
	}
}
