package executor

import (
	"fmt"

	"github.com/katungi/drizzle-orm/query/compiler"
	"github.com/katungi/drizzle-orm/query/sqlgen"
)

// Shape decodes rows and nests them by the selection paths. A nested group
// whose relation was left without a row by an outer join becomes nil.
func Shape(selection []compiler.SelectedField, rows *Rows) ([]map[string]interface{}, error) {
	if rows == nil || len(selection) == 0 {
		return nil, nil
	}
	if len(rows.Columns) != len(selection) {
		return nil, fmt.Errorf("%w: %d columns, %d fields", ErrShapeMismatch, len(rows.Columns), len(selection))
	}

	groups := nullableGroups(selection)
	out := make([]map[string]interface{}, 0, len(rows.Values))
	for _, raw := range rows.Values {
		if len(raw) != len(selection) {
			return nil, fmt.Errorf("%w: row has %d values", ErrShapeMismatch, len(raw))
		}
		values := make([]interface{}, len(raw))
		for i, v := range raw {
			decoded, err := decode(selection[i].Decoder, v)
			if err != nil {
				return nil, fmt.Errorf("field %v: %w", selection[i].Path, err)
			}
			values[i] = decoded
		}
		out = append(out, nestRow(selection, values, groups))
	}
	return out, nil
}

func decode(d sqlgen.Decoder, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if d != nil {
		return d.DecodeValue(v)
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

// groupCheck holds the field indices of one nested group owned by a
// single nullable relation
type groupCheck struct {
	fields  []int
	notNull []int
}

// nullableGroups finds the top level groups whose fields all come from one
// relation that an outer join may leave empty
func nullableGroups(selection []compiler.SelectedField) map[string]*groupCheck {
	owners := make(map[string]sqlgen.Relation)
	mixed := make(map[string]bool)
	checks := make(map[string]*groupCheck)
	for i, f := range selection {
		if len(f.Path) < 2 {
			continue
		}
		key := f.Path[0]
		if f.Owner == nil || !f.Nullable {
			mixed[key] = true
			continue
		}
		if owner, ok := owners[key]; ok && owner != f.Owner {
			mixed[key] = true
			continue
		}
		owners[key] = f.Owner
		c, ok := checks[key]
		if !ok {
			c = &groupCheck{}
			checks[key] = c
		}
		c.fields = append(c.fields, i)
		if f.NotNull {
			c.notNull = append(c.notNull, i)
		}
	}
	for key := range mixed {
		delete(checks, key)
	}
	return checks
}

func (c *groupCheck) isNull(values []interface{}) bool {
	if len(c.notNull) > 0 {
		for _, i := range c.notNull {
			if values[i] == nil {
				return true
			}
		}
		return false
	}
	for _, i := range c.fields {
		if values[i] != nil {
			return false
		}
	}
	return true
}

func nestRow(selection []compiler.SelectedField, values []interface{}, groups map[string]*groupCheck) map[string]interface{} {
	row := make(map[string]interface{})
	nulled := make(map[string]bool)
	for key, c := range groups {
		if c.isNull(values) {
			nulled[key] = true
			row[key] = nil
		}
	}
	for i, f := range selection {
		if len(f.Path) > 1 && nulled[f.Path[0]] {
			continue
		}
		setPath(row, f.Path, values[i])
	}
	return row
}

func setPath(row map[string]interface{}, path []string, v interface{}) {
	m := row
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
