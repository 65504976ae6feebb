package ingestion

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"fileflow/internal/domain"
)

// xmlRecordReader streams record elements out of an XML file with the stdlib
// token decoder, never materializing the document.
type xmlRecordReader struct {
	file    *os.File
	decoder *xml.Decoder
	schema  domain.FileSchema
	tags    map[string]string // tag -> field name
}

// OpenXML opens a streaming XML reader for the file at path, verifying the
// root element against the schema before any record is produced.
func OpenXML(path string, schema domain.FileSchema) (RecordReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open xml file: %w", err)
	}

	decoder := xml.NewDecoder(file)

	root, err := firstStartElement(decoder)
	if err != nil {
		file.Close()
		return nil, err
	}
	if root != schema.RootElement {
		file.Close()
		return nil, fmt.Errorf("%w: root element <%s> does not match expected <%s>",
			ErrSchemaValidation, root, schema.RootElement)
	}

	tags := make(map[string]string, len(schema.Fields))
	for _, rule := range schema.Fields {
		tags[rule.Tag] = rule.Name
	}

	return &xmlRecordReader{file: file, decoder: decoder, schema: schema, tags: tags}, nil
}

// Next scans forward to the next record element and collects the text of its
// known field tags. Every configured field is present as a key even when its
// tag was absent; when a tag repeats, the first non-blank text wins.
func (r *xmlRecordReader) Next() (domain.Record, error) {
	for {
		tok, err := r.decoder.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("xml read failed: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != r.schema.RecordElement {
			continue
		}
		return r.readRecord()
	}
}

func (r *xmlRecordReader) readRecord() (domain.Record, error) {
	out := make(domain.Record, len(r.schema.Fields))
	depth := 1
	currentTag := ""

	for depth > 0 {
		tok, err := r.decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("xml record truncated: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if _, known := r.tags[t.Name.Local]; known {
				currentTag = t.Name.Local
			}
		case xml.CharData:
			if currentTag != "" {
				text := strings.TrimSpace(string(t))
				if text != "" {
					field := r.tags[currentTag]
					if _, seen := out[field]; !seen {
						out[field] = text
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == currentTag {
				currentTag = ""
			}
			depth--
		}
	}

	for _, rule := range r.schema.Fields {
		if _, ok := out[rule.Name]; !ok {
			out[rule.Name] = ""
		}
	}
	return out, nil
}

func (r *xmlRecordReader) Close() error {
	return r.file.Close()
}

func firstStartElement(decoder *xml.Decoder) (string, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("%w: invalid xml, no root element found", ErrSchemaValidation)
			}
			return "", fmt.Errorf("cannot read xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
