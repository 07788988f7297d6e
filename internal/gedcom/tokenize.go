// Package gedcom tokenizes line-oriented genealogical record text.
package gedcom

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/rcliao/family-tree/internal/errors"
)

// MaxLineSize is the longest line Tokenize accepts.
const MaxLineSize = 1 << 20

var bom = []byte{0xEF, 0xBB, 0xBF}

// Record is one line of the input: `<level> [<xref>] <tag> [<value>]`.
type Record struct {
	Line  int
	Level int
	XRef  string
	Tag   string
	Value string

	// Malformed lines keep their raw text and carry no level or tag.
	Malformed bool
	Raw       string
}

// Tokenize reads the whole stream and returns its records in order.
// Invalid UTF-8 fails the call with a *errors.DecodingError and no records.
func Tokenize(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var (
		records []Record
		offset  int64
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		b := sc.Bytes()
		start := offset
		offset += int64(len(b)) + 1
		if lineNo == 1 && bytes.HasPrefix(b, bom) {
			b = b[len(bom):]
			start += int64(len(bom))
		}
		if !utf8.Valid(b) {
			return nil, apperrors.NewDecodingError(lineNo, start+int64(invalidAt(b)), "invalid UTF-8")
		}
		line := strings.TrimRight(string(b), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, parseLine(lineNo, line))
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, apperrors.NewDecodingError(lineNo+1, offset, "line too long")
		}
		return nil, apperrors.NewDecodingError(lineNo+1, offset, err.Error())
	}
	return records, nil
}

func invalidAt(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}

func parseLine(lineNo int, line string) Record {
	bad := Record{Line: lineNo, Malformed: true, Raw: line}

	rest := strings.TrimLeft(line, " \t")
	levelStr, rest := cut(rest)
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 0 {
		return bad
	}

	rec := Record{Line: lineNo, Level: level, Raw: line}
	tok, rest := cut(rest)
	if len(tok) >= 2 && strings.HasPrefix(tok, "@") && strings.HasSuffix(tok, "@") {
		rec.XRef = tok
		tok, rest = cut(rest)
	}
	if tok == "" {
		return bad
	}
	rec.Tag = strings.ToUpper(tok)
	rec.Value = rest
	return rec
}

// cut splits off the first space-delimited token. The remainder keeps inner spacing.
func cut(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}
