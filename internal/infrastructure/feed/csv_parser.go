package feed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Supported CSV encodings
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
)

// CSVParser reads delimited exports of the feed into raw rows
type CSVParser struct {
	delimiter rune
	encoding  string
	trimSpace bool
	reader    *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithEncoding sets the source encoding (utf-8 or windows-1251)
func WithEncoding(enc string) ParserOption {
	return func(p *CSVParser) {
		p.encoding = strings.ToLower(enc)
	}
}

// NewCSVParser creates a parser. Windows-1251 input is transcoded to UTF-8
// and a UTF-8 BOM is stripped.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter: ',',
		encoding:  EncodingUTF8,
		trimSpace: true,
	}
	for _, opt := range opts {
		opt(parser)
	}

	switch parser.encoding {
	case EncodingUTF8, "":
	case EncodingWindows1251:
		r = transform.NewReader(r, charmap.Windows1251.NewDecoder())
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrMalformedFeed, parser.encoding)
	}

	bufReader := bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	content, err := bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = bufReader.Discard(3)
	}

	if err := validateUTF8(bufReader); err != nil {
		return nil, err
	}

	parser.reader = csv.NewReader(bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = true
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1 // Allow variable number of fields
	return parser, nil
}

// validateUTF8 checks that the content is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return fmt.Errorf("%w: empty file", ErrMalformedFeed)
	}
	// a multi-byte rune may straddle the peek window
	for i := 0; i < utf8.UTFMax && len(content) == checkSize; i++ {
		if utf8.Valid(content) {
			break
		}
		content = content[:len(content)-1]
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: file is not valid UTF-8, set feed.encoding", ErrMalformedFeed)
	}
	return nil
}

// ReadAll returns every row, preserving row positions
func (p *CSVParser) ReadAll() ([][]string, error) {
	var rows [][]string
	for line := 1; ; line++ {
		record, err := p.reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: error reading row %d: %v", ErrMalformedFeed, line, err)
		}
		if p.trimSpace {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, record)
	}
}
