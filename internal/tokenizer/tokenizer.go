package tokenizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// nonAlphanumericRegex matches runs of characters that are neither Unicode
// letters nor digits.
var nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize converts a string into a slice of normalized tokens.
// It lowercases the input (Unicode-aware) and splits on non-alphanumeric
// boundaries, dropping empty tokens. The exact same pipeline runs on record
// text at index-build time and on query strings at search time so the two
// sides stay comparable.
func Tokenize(text string) []string {
	lowerText := strings.ToLower(text)
	split := nonAlphanumericRegex.Split(lowerText, -1)

	tokens := make([]string, 0) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" { // Filter out empty strings
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// maxFlattenDepth bounds recursion into nested values. A JSON-like value
// nesting deeper than this is, in practice, a cyclic structure.
const maxFlattenDepth = 64

// Flatten produces the textual projection of a JSON-like value: leaf values
// (strings, numbers, booleans) are stringified and joined with spaces, arrays
// and objects are walked recursively, and field names are not included.
// The boolean result is false when the value nests past maxFlattenDepth
// (e.g., a map that contains itself); callers should treat such a value as
// having no textual content rather than failing the whole build.
func Flatten(value interface{}) (string, bool) {
	var sb strings.Builder
	ok := flattenInto(&sb, value, 0)
	return strings.TrimSpace(sb.String()), ok
}

func flattenInto(sb *strings.Builder, value interface{}, depth int) bool {
	if depth > maxFlattenDepth {
		return false
	}

	switch v := value.(type) {
	case nil:
		// Nulls contribute no text
	case string:
		writeLeaf(sb, v)
	case bool:
		writeLeaf(sb, strconv.FormatBool(v))
	case float64: // JSON numbers unmarshal to float64
		writeLeaf(sb, strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		writeLeaf(sb, strconv.Itoa(v))
	case int64:
		writeLeaf(sb, strconv.FormatInt(v, 10))
	case json.Number:
		writeLeaf(sb, v.String())
	case []string:
		for _, item := range v {
			writeLeaf(sb, item)
		}
	case []interface{}:
		for _, item := range v {
			if !flattenInto(sb, item, depth+1) {
				return false
			}
		}
	case map[string]interface{}:
		for _, item := range v {
			if !flattenInto(sb, item, depth+1) {
				return false
			}
		}
	default:
		writeLeaf(sb, fmt.Sprintf("%v", v))
	}
	return true
}

func writeLeaf(sb *strings.Builder, text string) {
	if text == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(text)
}
