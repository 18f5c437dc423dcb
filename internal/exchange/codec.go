package exchange

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

type EncodedSnapshot struct {
	Content     []byte
	ContentType string
	FileName    string
}

// Decode разбирает сырой текст в канонический граф.
// Синтаксическая ошибка JSON фатальна; CSV восстанавливается построчно,
// испорченные строки попадают в предупреждения.
func Decode(format Format, content []byte) (*Graph, []Issue, error) {
	switch format {
	case FormatJSON:
		graph, err := decodeJSON(content)
		return graph, nil, err
	case FormatCSV:
		return decodeCSV(content)
	default:
		return nil, nil, fmt.Errorf("%w: decoding %s is not supported", ErrUnsupportedFormat, format)
	}
}

func Encode(format Format, g *Graph) (*EncodedSnapshot, error) {
	switch format {
	case FormatJSON:
		content, err := encodeJSON(g)
		if err != nil {
			return nil, err
		}
		return snapshot(g, content, "application/json", "json"), nil
	case FormatCSV:
		return snapshot(g, encodeCSV(g), "text/csv", "csv"), nil
	case FormatXLSX:
		content, err := encodeXLSX(g)
		if err != nil {
			return nil, err
		}
		contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		return snapshot(g, content, contentType, "xlsx"), nil
	case FormatPDF:
		content, err := encodePDF(g)
		if err != nil {
			return nil, err
		}
		return snapshot(g, content, "application/pdf", "pdf"), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func snapshot(g *Graph, content []byte, contentType, extension string) *EncodedSnapshot {
	fileName := fmt.Sprintf(
		"enterprise_%d_export_%s.%s",
		g.Enterprise.ID,
		g.ExportedAt.UTC().Format("20060102T150405Z"),
		extension,
	)
	return &EncodedSnapshot{Content: content, ContentType: contentType, FileName: fileName}
}
