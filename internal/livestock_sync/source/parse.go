package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"

	"livestock-sync/internal/livestock_sync/model"
)

var errNotMarkup = errors.New("response is not a markup document")

// ParseFarmList decodes the farm-data payload. The top level is either an array of records
// or an object wrapping one under "data", "items" or "results".
func ParseFarmList(body []byte) ([]model.RawFarm, error) {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var items []any
	switch v := parsed.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"data", "items", "results"} {
			if arr, ok := v[key].([]any); ok {
				items = arr
				break
			}
		}
		if items == nil {
			return nil, errors.New("object response without a record array")
		}
	default:
		return nil, fmt.Errorf("unexpected top-level JSON type %T", parsed)
	}

	farms := make([]model.RawFarm, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is %T, not an object", i, item)
		}
		farms = append(farms, model.RawFarm(obj))
	}
	return farms, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// trimMarkup drops surrounding whitespace and a leading UTF-8 byte order mark.
func trimMarkup(body []byte) []byte {
	return bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))
}

// ParseAnimalRows extracts animalNo from every row element at any depth. Rows without a
// number are skipped. A document with no rows yields an empty, non-nil slice.
func ParseAnimalRows(body []byte) ([]string, error) {
	trimmed := trimMarkup(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return nil, errNotMarkup
	}

	m, err := mxj.NewMapXml(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	rows, err := m.ValuesForKey("row")
	if err != nil {
		return nil, fmt.Errorf("find rows: %w", err)
	}

	animals := []string{}
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			continue // <row/> or a text-only row
		}
		if no := elementText(fields["animalNo"]); no != "" {
			animals = append(animals, no)
		}
	}
	return animals, nil
}

// elementText returns the text of a decoded element: a plain string, the "#text" of an
// element with attributes, or the first of repeated elements.
func elementText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return elementText(t["#text"])
	case []any:
		if len(t) > 0 {
			return elementText(t[0])
		}
	}
	return ""
}

// ParseMarkupMap converts a markup document into a nested mapping keyed by element name.
func ParseMarkupMap(body []byte) (map[string]any, error) {
	trimmed := trimMarkup(body)
	if len(trimmed) == 0 {
		return nil, errNotMarkup
	}
	m, err := mxj.NewMapXml(trimmed)
	if err != nil {
		return nil, fmt.Errorf("convert markup: %w", err)
	}
	return map[string]any(m), nil
}
