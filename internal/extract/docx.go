package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const documentPart = "word/document.xml"

// Docx returns the body-level paragraphs of a Word document in order.
// Paragraphs inside tables and text boxes are skipped; tabs and line breaks
// inside a paragraph are kept as "\t" and "\n".
func Docx(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()
		return docxParagraphs(rc)
	}
	return nil, fmt.Errorf("docx: missing %s", documentPart)
}

func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paras     []string
		cur       strings.Builder
		inPara    bool
		inText    bool
		tableNest int
		boxNest   int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableNest++
			case "txbxContent":
				boxNest++
			case "p":
				if tableNest == 0 && boxNest == 0 {
					inPara = true
					cur.Reset()
				}
			case "t":
				inText = inPara && boxNest == 0
			case "tab":
				if inPara && boxNest == 0 {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if inPara && boxNest == 0 {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableNest--
			case "txbxContent":
				boxNest--
			case "p":
				if inPara && tableNest == 0 && boxNest == 0 {
					paras = append(paras, cur.String())
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
