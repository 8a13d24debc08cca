package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrSmartParse is wrapped by SmartParse when no strategy yields a document
// that decodes into the target.
var ErrSmartParse = errors.New("SMART_PARSE_FAILED")

// RepairJSON fixes the usual model slips: unquoted or single-quoted keys,
// unclosed containers, trailing commas and comments.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON reads Hjson and re-encodes it as standard JSON.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// parseStrategy turns a model reply into a JSON document.
type parseStrategy struct {
	name      string
	normalize func(string) (string, error)
}

// parseStrategies are tried in order, strictest first.
var parseStrategies = []parseStrategy{
	{"json", func(s string) (string, error) {
		if !json.Valid([]byte(s)) {
			return "", fmt.Errorf("not valid JSON")
		}
		return s, nil
	}},
	{"repair", RepairJSON},
	{"hjson", ParseHJSON},
}

// SmartParse strips code fences from a model reply and decodes it into
// schema with the first strategy that works. It returns the JSON that was
// decoded.
func SmartParse(input string, schema interface{}) (string, error) {
	input = CleanMarkdown(input)

	var errs []error
	for i, st := range parseStrategies {
		doc, err := st.normalize(input)
		if err == nil {
			err = json.Unmarshal([]byte(doc), schema)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
			continue
		}
		if i > 0 {
			log.Printf("[Parse] reply decoded with %s strategy", st.name)
		}
		return doc, nil
	}
	return "", fmt.Errorf("%w: %v", ErrSmartParse, errors.Join(errs...))
}
