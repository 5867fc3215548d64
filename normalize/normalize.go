package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kanddle/modelvec/core"
)

// Numeric wrapper keys produced by document stores that serialize numbers
// as tagged objects.
const (
	numberDoubleKey = "$numberDouble"
	numberIntKey    = "$numberInt"
)

// groupedKeys are nested mappings rendered inside brace delimiters so their
// sub-fields stay visually grouped in the flattened text.
var groupedKeys = map[string]bool{
	"performance":           true,
	"hardware_requirements": true,
	"popularity":            true,
}

var (
	colonSpacing = regexp.MustCompile(`\s*:\s*`)
	commaSpacing = regexp.MustCompile(`\s*,\s*`)
	multiSpace   = regexp.MustCompile(`\s{2,}`)
)

// Flatten converts a source record's fields into a single descriptive string
// suitable for embedding. Flattening is a pure function of the field content:
// the same fields always yield the same string.
//
// If structured flattening fails (a field holds a value of an unsupported
// type), Flatten falls back to extracting a fixed set of commonly-present
// fields. It never fails; any record with at least one field produces a
// non-empty string.
func Flatten(fields core.Fields) string {
	s, err := flattenStructured(fields)
	if err != nil {
		slog.Debug("structured flattening failed, using fallback", "err", err)
		return fallbackExtract(fields)
	}
	return postProcess(s)
}

// flattenStructured joins every field as a "key: value" pair, comma-separated,
// preserving the record's field order.
func flattenStructured(fields core.Fields) (string, error) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		nested, isNested := field.Value.(core.Fields)
		if isNested && groupedKeys[field.Key] && !isNumberWrapper(nested) {
			sub := make([]string, 0, len(nested))
			for _, nf := range nested {
				v, err := convertValue(nf.Value)
				if err != nil {
					return "", err
				}
				sub = append(sub, nf.Key+": "+v)
			}
			parts = append(parts, field.Key+": {"+strings.Join(sub, ", ")+"}")
			continue
		}

		v, err := convertValue(field.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, field.Key+": "+v)
	}
	return strings.Join(parts, ", "), nil
}

// convertValue renders a field value as text. Nested number wrappers unwrap
// to the bare numeric string, other nested mappings render recursively as
// "key: value" pairs, and sequences render comma-joined.
func convertValue(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case core.Fields:
		if num, ok := unwrapNumber(v); ok {
			return num, nil
		}
		parts := make([]string, 0, len(v))
		for _, field := range v {
			s, err := convertValue(field.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, field.Key+": "+s)
		}
		return strings.Join(parts, ", "), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			s, err := convertValue(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func isNumberWrapper(fields core.Fields) bool {
	_, ok := unwrapNumber(fields)
	return ok
}

// unwrapNumber unwraps store-serialized numeric objects like
// {"$numberInt": "42"} to the bare numeric string.
func unwrapNumber(fields core.Fields) (string, bool) {
	for _, key := range []string{numberDoubleKey, numberIntKey} {
		if v, ok := fields.Get(key); ok {
			s, err := convertValue(v)
			if err != nil {
				return "", false
			}
			return s, true
		}
	}
	return "", false
}

// postProcess cleans the flattened text for embedding quality: structural
// punctuation is stripped, colon spacing is normalized, comma separators
// become sentence breaks, and each sentence fragment is capitalized.
func postProcess(s string) string {
	s = strings.NewReplacer("{", "", "}", "", "[", "", "]", "", "_", " ").Replace(s)
	s = colonSpacing.ReplaceAllString(s, ": ")
	s = commaSpacing.ReplaceAllString(s, ". ")
	s = multiSpace.ReplaceAllString(s, " ")

	sentences := strings.Split(s, ". ")
	for i, sentence := range sentences {
		sentences[i] = capitalize(strings.TrimSpace(sentence))
	}
	return strings.Join(sentences, ". ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// fallbackExtract builds a best-effort description from a fixed set of
// commonly-present model metadata fields.
func fallbackExtract(fields core.Fields) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(lookupString(fields, "name"))
	add(lookupString(fields, "framework"))
	add(lookupString(fields, "task"))
	add(lookupString(fields, "architecture"))
	add(lookupString(fields, "domains"))
	add(lookupString(fields, "use_cases"))
	add(lookupString(fields, "license"))

	if popularity := fields.GetFields("popularity"); popularity != nil {
		add(lookupString(popularity, "stars"))
		add(lookupString(popularity, "downloads"))
	}

	add(lookupString(fields, "model_size_parameters"))
	add(lookupString(fields, "hardware_requirements"))

	return strings.Join(parts, " ")
}

func lookupString(fields core.Fields, key string) string {
	v, ok := fields.Get(key)
	if !ok {
		return ""
	}
	s, err := convertValue(v)
	if err != nil {
		return ""
	}
	return s
}
