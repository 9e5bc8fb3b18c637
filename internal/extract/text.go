package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// charsetAliases maps detector names that htmlindex spells differently.
var charsetAliases = map[string]string{
	"GB-18030": "gb18030",
}

// Text returns the lines of a plain-text file.
func Text(path string) ([]string, error) {
	s, err := readText(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(s, "\n"), nil
}

// readText loads a text file as UTF-8, dropping a leading BOM and
// normalizing line endings to "\n". Files that are not valid UTF-8 are
// decoded from the detected charset (Shift_JIS, EUC-JP, ...).
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	s, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("read text %s: %w", path, err)
	}
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), nil
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	name := best.Charset
	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", best.Charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", best.Charset, err)
	}
	return string(out), nil
}
