// Package report renders a ScanResult as JSON, CSV or HTML.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/awsmap/awsmap/inventory"
)

// Formats supported by Render.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Render produces the report in the requested format.
func Render(result *inventory.ScanResult, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return renderJSON(result)
	case FormatCSV:
		return renderCSV(result)
	case FormatHTML:
		return renderHTML(result)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// DefaultFilename builds the output path used when the caller gives none.
func DefaultFilename(accountID, format string, ts time.Time) string {
	return fmt.Sprintf("%s_inventory_%s.%s", accountID, ts.Format("20060102_150405"), format)
}

func renderJSON(result *inventory.ScanResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json report: %w", err)
	}
	return data, nil
}

func renderCSV(result *inventory.ScanResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"service", "type", "id", "name", "region", "arn", "tags"}); err != nil {
		return nil, err
	}

	for _, record := range result.Records {
		if err := writer.Write([]string{
			record.Service,
			record.Type,
			record.ID,
			record.Name,
			record.Region,
			record.ARN,
			flattenTags(record.Tags),
		}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("encode csv report: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenTags renders tags as "k=v; k=v" with stable key order.
func flattenTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+tags[key])
	}
	return strings.Join(pairs, "; ")
}
