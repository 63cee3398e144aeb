package service

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"github.com/uniportal/degree-import-api/internal/models"
)

// matricPattern accepts registry formats such as ABC/12/3456 and abc-12-3456.
var matricPattern = regexp.MustCompile(`(?i)\b[A-Z]{2,5}[/-]\d{2}[/-]\d{3,6}\b`)

// ExtractService pulls candidate class-of-degree updates out of uploaded
// Word documents. Table rows are preferred; free-text paragraphs that carry
// both a matric number and a recognisable degree class are picked up as a
// fallback.
type ExtractService struct {
	logger *zap.Logger
}

// NewExtractService constructs an ExtractService.
func NewExtractService(logger *zap.Logger) *ExtractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractService{logger: logger}
}

// Extract parses the document bytes and returns candidate rows in document
// order. Rows missing either a matric number or a degree class are skipped,
// not errored.
func (s *ExtractService) Extract(data []byte) ([]models.ExtractedRow, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	tables, paragraphs, err := parseDocumentXML(doc.Editable().GetContent())
	if err != nil {
		return nil, fmt.Errorf("parse document body: %w", err)
	}

	rows := make([]models.ExtractedRow, 0)

	for _, table := range tables {
		for i, cells := range table {
			if isHeaderRow(cells) {
				continue
			}
			matric := findMatric(cells)
			class := findClass(cells)
			if matric == "" || class == "" {
				continue
			}
			rowNumber := i + 1
			rows = append(rows, models.ExtractedRow{
				MatricNo:      strings.ToUpper(matric),
				ClassOfDegree: class,
				Source:        models.SourceTable,
				RowNumber:     &rowNumber,
			})
		}
	}

	for _, text := range paragraphs {
		matric := matricPattern.FindString(text)
		if matric == "" {
			continue
		}
		remainder := matricPattern.ReplaceAllString(text, "")
		class, ok := NormalizeClassOfDegree(remainder)
		if !ok {
			continue
		}
		rows = append(rows, models.ExtractedRow{
			MatricNo:      strings.ToUpper(matric),
			ClassOfDegree: class,
			Source:        models.SourceText,
		})
	}

	s.logger.Debug("document extraction finished",
		zap.Int("tables", len(tables)),
		zap.Int("paragraphs", len(paragraphs)),
		zap.Int("rows", len(rows)))

	return rows, nil
}

// parseDocumentXML walks word/document.xml collecting table cell text and
// paragraph text outside tables. Nested tables are flattened into the
// enclosing cell.
func parseDocumentXML(content string) (tables [][][]string, paragraphs []string, err error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		tableDepth int
		table      [][]string
		row        []string
		cell       strings.Builder
		para       strings.Builder
		inCell     bool
		inPara     bool
		inText     bool
	)

	for {
		token, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return nil, nil, tokenErr
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = nil
				}
			case "tr":
				if tableDepth == 1 {
					row = nil
				}
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					para.Reset()
				}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(table) > 0 {
					tables = append(tables, table)
				}
			case "tr":
				if tableDepth == 1 {
					table = append(table, row)
				}
			case "tc":
				if tableDepth == 1 && inCell {
					row = append(row, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "p":
				if inPara {
					if text := strings.TrimSpace(para.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					inPara = false
				} else if inCell {
					// Paragraph breaks inside a cell become spaces.
					cell.WriteString(" ")
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if inCell {
				cell.Write(t)
			} else if inPara {
				para.Write(t)
			}
		}
	}

	return tables, paragraphs, nil
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "matric") || strings.Contains(lower, "s/n") {
			return true
		}
	}
	return false
}

func findMatric(cells []string) string {
	for _, c := range cells {
		if m := matricPattern.FindString(c); m != "" {
			return m
		}
	}
	return ""
}

func findClass(cells []string) string {
	for _, c := range cells {
		// Skip the matric cell so "BSC/12/3456" is never misread as a class.
		if matricPattern.MatchString(c) {
			continue
		}
		if class, ok := NormalizeClassOfDegree(c); ok {
			return class
		}
	}
	return ""
}

// NormalizeClassOfDegree maps the many spellings found in documents onto the
// registry's canonical degree class values.
func NormalizeClassOfDegree(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	switch {
	case strings.Contains(s, "first") || strings.Contains(s, "1st"):
		return "First Class", true
	case strings.Contains(s, "2:1") || strings.Contains(s, "2.1") ||
		(strings.Contains(s, "second") && strings.Contains(s, "upper")) ||
		strings.Contains(s, "upper division") || strings.Contains(s, "upper credit"):
		return "Second Class Upper", true
	case strings.Contains(s, "2:2") || strings.Contains(s, "2.2") ||
		(strings.Contains(s, "second") && strings.Contains(s, "lower")) ||
		strings.Contains(s, "lower division") || strings.Contains(s, "lower credit"):
		return "Second Class Lower", true
	case strings.Contains(s, "third") || strings.Contains(s, "3rd"):
		return "Third Class", true
	case strings.Trim(s, ". ") == "pass":
		return "Pass", true
	}
	return "", false
}

// NormalizeMatric strips separators and upcases a matric number for
// partial-confidence lookups.
func NormalizeMatric(raw string) string {
	replacer := strings.NewReplacer("/", "", "-", "", " ", "")
	return replacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
}
