package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// EncodeValue converts an application value into a driver value
func (c *Column) EncodeValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if len(c.dims) > 0 {
		if elems, ok := v.([]interface{}); ok && c.kind == KindJSON {
			docs := make(pq.StringArray, len(elems))
			for i, elem := range elems {
				doc, err := encodeJSON(elem)
				if err != nil {
					return nil, err
				}
				docs[i] = doc.(string)
			}
			return docs.Value()
		}
		value, err := pq.Array(v).Value()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c, err)
		}
		return value, nil
	}
	switch c.kind {
	case KindJSON:
		return encodeJSON(v)
	case KindString:
		if len(c.enumValues) > 0 {
			s := fmt.Sprint(v)
			for _, allowed := range c.enumValues {
				if s == allowed {
					return s, nil
				}
			}
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidEnumValue, c, s)
		}
	}
	return v, nil
}

func encodeJSON(v interface{}) (interface{}, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return string(raw), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}

// DecodeValue converts a raw driver value into an application value
func (c *Column) DecodeValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if len(c.dims) > 0 {
		out, err := c.decodeArray(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, c, err)
		}
		return out, nil
	}
	out, err := decodeScalar(c.kind, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, c, err)
	}
	return out, nil
}

func decodeScalar(kind DataKind, v interface{}) (interface{}, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch kind {
	case KindInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%v is not an integer", n)
			}
			return int64(n), nil
		case string:
			return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(n), 64)
		}
	case KindNumeric:
		switch n := v.(type) {
		case string:
			return n, nil
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		}
	case KindBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case string:
			return strconv.ParseBool(b)
		}
	case KindJSON:
		if s, ok := v.(string); ok {
			var out interface{}
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, err
			}
			return out, nil
		}
	case KindTime, KindDate:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			return parseTime(t)
		}
	}
	return v, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

func (c *Column) decodeArray(v interface{}) (interface{}, error) {
	var src interface{}
	switch raw := v.(type) {
	case []byte:
		src = raw
	case string:
		src = []byte(raw)
	default:
		return v, nil
	}
	if len(c.dims) > 1 || c.kind == KindJSON || c.kind == KindTime || c.kind == KindDate {
		text := string(src.([]byte))
		parsed, err := parseArrayLiteral(text)
		if err != nil {
			return nil, err
		}
		return decodeLeaves(c.kind, parsed)
	}
	switch c.kind {
	case KindInt:
		var out pq.Int64Array
		if err := out.Scan(src); err != nil {
			return nil, err
		}
		return []int64(out), nil
	case KindFloat:
		var out pq.Float64Array
		if err := out.Scan(src); err != nil {
			return nil, err
		}
		return []float64(out), nil
	case KindBool:
		var out pq.BoolArray
		if err := out.Scan(src); err != nil {
			return nil, err
		}
		return []bool(out), nil
	default:
		var out pq.StringArray
		if err := out.Scan(src); err != nil {
			return nil, err
		}
		return []string(out), nil
	}
}

func decodeLeaves(kind DataKind, v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, elem := range x {
			d, err := decodeLeaves(kind, elem)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	default:
		return decodeScalar(kind, x)
	}
}

// parseArrayLiteral parses a Postgres array literal such as {{1,2},{3,NULL}}
// into nested slices of strings and nils
func parseArrayLiteral(s string) ([]interface{}, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "="); i > 0 && strings.HasPrefix(s, "[") {
		s = s[i+1:]
	}
	p := &arrayParser{s: s}
	out, err := p.array()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("%w: trailing input at %d", ErrArrayLiteral, p.pos)
	}
	return out, nil
}

type arrayParser struct {
	s   string
	pos int
}

func (p *arrayParser) array() ([]interface{}, error) {
	if p.pos >= len(p.s) || p.s[p.pos] != '{' {
		return nil, fmt.Errorf("%w: expected '{' at %d", ErrArrayLiteral, p.pos)
	}
	p.pos++
	out := []interface{}{}
	if p.pos < len(p.s) && p.s[p.pos] == '}' {
		p.pos++
		return out, nil
	}
	for {
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("%w: unterminated array", ErrArrayLiteral)
		}
		switch p.s[p.pos] {
		case '{':
			sub, err := p.array()
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		case '"':
			str, err := p.quoted()
			if err != nil {
				return nil, err
			}
			out = append(out, str)
		default:
			bare := p.bare()
			if strings.EqualFold(bare, "NULL") {
				out = append(out, nil)
			} else {
				out = append(out, bare)
			}
		}
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("%w: unterminated array", ErrArrayLiteral)
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrArrayLiteral, p.s[p.pos], p.pos)
		}
	}
}

func (p *arrayParser) quoted() (string, error) {
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch c {
		case '\\':
			p.pos++
			if p.pos < len(p.s) {
				sb.WriteByte(p.s[p.pos])
			}
		case '"':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}
	return "", fmt.Errorf("%w: unterminated quoted element", ErrArrayLiteral)
}

func (p *arrayParser) bare() string {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ',' && p.s[p.pos] != '}' {
		p.pos++
	}
	return strings.TrimSpace(p.s[start:p.pos])
}
