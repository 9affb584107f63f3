package tags

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/griffnb/tsschema/internal/schema"
)

var dataRefRegex = regexp.MustCompile(`^\$\{(.*)\}$`)

// dataRef returns the expression of a ${...} tag value.
func dataRef(value string) (string, bool) {
	m := dataRefRegex.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// coerce converts a raw tag value. A ${expr} value becomes a $data marker.
func coerce(name, value string, kind valueKind) (interface{}, error) {
	if expr, ok := dataRef(value); ok {
		return schema.DataRef(expr), nil
	}

	switch kind {
	case kindNumber:
		return parseFloat(name, value)
	case kindInteger:
		return parseInt(name, value)
	case kindBoolean:
		return strings.TrimSpace(value) != "false", nil
	}
	return value, nil
}

func parseFloat(name, value string) (float64, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if i, ierr := strconv.ParseInt(text, 0, 64); ierr == nil {
			return float64(i), nil
		}
		return 0, fmt.Errorf("can't parse numeric value of %q tag: %v", name, err)
	}
	return v, nil
}

func parseInt(name, value string) (int64, error) {
	v, err := parseFloat(name, value)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("can't parse integer value of %q tag: %s", name, value)
	}
	return int64(v), nil
}

func parseJSON(name, value string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return nil, fmt.Errorf("can't parse JSON value of %q tag: %v", name, err)
	}
	return v, nil
}
