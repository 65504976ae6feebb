package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"fileflow/internal/domain"
	"fileflow/pkg/validator"
)

var (
	delimiterCandidates = []rune{',', ';', '\t', '|'}
	byteOrderMark       = []byte{0xEF, 0xBB, 0xBF}
)

// csvRecordReader reads a CSV file against a schema, one record per
// non-empty line. The header row (when configured) is validated strictly for
// required columns at open time.
type csvRecordReader struct {
	file    *os.File
	reader  *csv.Reader
	schema  domain.FileSchema
	headers map[string]int
	line    int
}

// OpenCSV opens a streaming CSV reader for the file at path. Structural
// preconditions (delimiter, header presence) are checked before the first
// record is produced.
func OpenCSV(path string, schema domain.FileSchema) (RecordReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open csv file: %w", err)
	}

	buffered := bufio.NewReader(file)
	if prefix, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	firstLine, rest, err := readFirstNonBlankLine(buffered)
	if err != nil {
		file.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: csv file has no content", ErrSchemaValidation)
		}
		return nil, fmt.Errorf("cannot read csv file: %w", err)
	}

	delim := rune(schema.Delimiter[0])
	if err := checkDelimiter(firstLine, delim); err != nil {
		file.Close()
		return nil, err
	}

	r := csv.NewReader(io.MultiReader(strings.NewReader(firstLine+"\n"), rest))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	cr := &csvRecordReader{file: file, reader: r, schema: schema}

	if schema.HasHeader {
		headerRow, err := r.Read()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("cannot read csv header: %w", err)
		}
		headers := make(map[string]int, len(headerRow))
		for i, h := range headerRow {
			headers[strings.TrimSpace(h)] = i
		}
		if err := validateHeader(schema, headers); err != nil {
			file.Close()
			return nil, err
		}
		cr.headers = headers
	}

	return cr, nil
}

// Next yields the next record, skipping empty lines, with every schema field
// present as a key (missing values map to "").
func (r *csvRecordReader) Next() (domain.Record, error) {
	for {
		row, err := r.reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("csv read failed: %w", err)
		}
		if isBlankRow(row) {
			continue
		}
		r.line++

		out := make(domain.Record, len(r.schema.Fields))
		for _, rule := range r.schema.Fields {
			raw, err := r.lookup(rule, row)
			if err != nil {
				return nil, err
			}
			out[rule.Name] = strings.TrimSpace(raw)
		}
		return out, nil
	}
}

func (r *csvRecordReader) lookup(rule domain.FieldRule, row []string) (string, error) {
	if r.schema.HasHeader {
		idx, ok := r.headers[rule.Header]
		if !ok || idx >= len(row) {
			return "", nil
		}
		return row[idx], nil
	}
	if rule.Index == nil {
		return "", validator.NewRecordError(validator.CodeMissingColumn, rule.Name, r.line,
			fmt.Sprintf("csv mapping needs 'index' when hasHeader=false for field: %s", rule.Name))
	}
	if *rule.Index < 0 || *rule.Index >= len(row) {
		return "", nil
	}
	return row[*rule.Index], nil
}

func (r *csvRecordReader) Close() error {
	return r.file.Close()
}

// checkDelimiter sniffs the actual delimiter of the first line by character
// frequency and rejects the file when it conflicts with the configured one.
func checkDelimiter(firstLine string, configured rune) error {
	var best rune
	bestCount := 0
	for _, cand := range delimiterCandidates {
		if n := strings.Count(firstLine, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	if bestCount > 0 && best != configured {
		return fmt.Errorf("%w: detected delimiter %q does not match configured %q",
			ErrSchemaValidation, string(best), string(configured))
	}
	return nil
}

// validateHeader rejects the file when no expected header is present, or when
// a required field's configured header column is missing.
func validateHeader(schema domain.FileSchema, headers map[string]int) error {
	anyKnown := false
	for _, rule := range schema.Fields {
		if rule.Header == "" {
			continue
		}
		if _, ok := headers[rule.Header]; ok {
			anyKnown = true
			break
		}
	}
	if !anyKnown {
		return fmt.Errorf("%w: csv header matches none of the expected columns", ErrSchemaValidation)
	}

	for _, rule := range schema.Fields {
		if !rule.Required {
			continue
		}
		if strings.TrimSpace(rule.Header) == "" {
			return fmt.Errorf("%w: required column has no 'header' value: %s", ErrSchemaValidation, rule.Name)
		}
		if _, ok := headers[rule.Header]; !ok {
			return fmt.Errorf("%w: required column missing in csv header: '%s'", ErrSchemaValidation, rule.Header)
		}
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// readFirstNonBlankLine consumes leading blank lines and returns the first
// line with content plus a reader positioned right after it.
func readFirstNonBlankLine(r *bufio.Reader) (string, io.Reader, error) {
	for {
		line, err := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) != "" {
			return trimmed, r, nil
		}
		if err != nil {
			return "", nil, err
		}
	}
}
