package feed

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Feed formats
const (
	FormatAuto = "auto"
	FormatXLS  = "xls"
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ErrMalformedFeed is returned when the payload cannot be read as a product table
var ErrMalformedFeed = errors.New("feed: malformed payload")

var (
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DecodeOptions tunes how a sheet is decoded
type DecodeOptions struct {
	Format       string
	Encoding     string
	CSVDelimiter rune
	// MaxEntryBytes bounds a decompressed archive entry
	MaxEntryBytes int64
}

// DecodeSheet unpacks an archive if needed and returns the raw rows of the first sheet
func DecodeSheet(name string, data []byte, opts DecodeOptions) ([][]string, error) {
	format := opts.Format
	if format == "" {
		format = FormatAuto
	}

	if bytes.HasPrefix(data, magicZip) && !isXLSXPackage(data) {
		entryName, entry, err := extractSpreadsheet(data, opts.MaxEntryBytes)
		if err != nil {
			return nil, err
		}
		name, data = entryName, entry
	}

	if format == FormatAuto {
		format = detectFormat(name, data)
	}

	switch format {
	case FormatXLS:
		return decodeXLS(data)
	case FormatXLSX:
		return decodeXLSX(data)
	case FormatCSV:
		return decodeCSV(data, opts)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedFeed, format)
	}
}

func detectFormat(name string, data []byte) string {
	switch {
	case bytes.HasPrefix(data, magicOLE):
		return FormatXLS
	case bytes.HasPrefix(data, magicZip):
		return FormatXLSX
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xls":
		return FormatXLS
	case ".xlsx":
		return FormatXLSX
	}
	return FormatCSV
}

// isXLSXPackage tells an .xlsx document apart from a zip that carries one
func isXLSXPackage(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "[Content_Types].xml" {
			return true
		}
	}
	return false
}

// extractSpreadsheet returns the first .xls, .xlsx or .csv entry of a zip archive
func extractSpreadsheet(data []byte, maxBytes int64) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("%w: opening archive: %v", ErrMalformedFeed, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".xls", ".xlsx", ".csv":
		default:
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("%w: opening %s: %v", ErrMalformedFeed, f.Name, err)
		}
		content, err := readBounded(rc, maxBytes)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("%w: reading %s: %v", ErrMalformedFeed, f.Name, err)
		}
		return f.Name, content, nil
	}
	return "", nil, fmt.Errorf("%w: archive holds no spreadsheet", ErrMalformedFeed)
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	content, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > maxBytes {
		return nil, fmt.Errorf("entry larger than %d bytes", maxBytes)
	}
	return content, nil
}

func decodeXLS(data []byte) (rows [][]string, err error) {
	// the BIFF reader panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("%w: xls: %v", ErrMalformedFeed, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: xls: %v", ErrMalformedFeed, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: xls workbook has no sheets", ErrMalformedFeed)
	}
	sheet := wb.GetSheet(0)
	if sheet.MaxRow == 0 {
		return nil, fmt.Errorf("%w: xls sheet is empty", ErrMalformedFeed)
	}

	// WorkSheet.Row panics on rows without a ROW record; ReadAllCells keeps
	// them as nil. MaxRow+1 stops it after the first sheet.
	rows = wb.ReadAllCells(int(sheet.MaxRow) + 1)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: xls sheet is empty", ErrMalformedFeed)
	}
	return rows, nil
}

func decodeXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformedFeed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx workbook has no sheets", ErrMalformedFeed)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformedFeed, err)
	}
	return rows, nil
}

func decodeCSV(data []byte, opts DecodeOptions) ([][]string, error) {
	parserOpts := []ParserOption{WithEncoding(opts.Encoding)}
	if opts.CSVDelimiter != 0 {
		parserOpts = append(parserOpts, WithDelimiter(opts.CSVDelimiter))
	}
	parser, err := NewCSVParser(bytes.NewReader(data), parserOpts...)
	if err != nil {
		return nil, err
	}
	return parser.ReadAll()
}
