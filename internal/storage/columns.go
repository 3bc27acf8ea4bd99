package storage

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var errNoRows = errors.New("no rows")

// column is one exported struct field exposed under its json name
type column struct {
	name  string
	index int
	kind  reflect.Kind
}

// schema describes the columns of a record type
type schema struct {
	typ     reflect.Type
	columns []column
}

func (s schema) names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.name
	}
	return out
}

// schemaOf derives the schema of rows, which must all be structs (or pointers to
// structs) of the same type
func schemaOf(rows []any) (schema, error) {
	if len(rows) == 0 {
		return schema{}, errNoRows
	}

	typ := structType(rows[0])
	if typ == nil {
		return schema{}, fmt.Errorf("row type %T is not a struct", rows[0])
	}
	for _, row := range rows[1:] {
		if structType(row) != typ {
			return schema{}, fmt.Errorf("mixed row types %s and %T", typ, row)
		}
	}

	s := schema{typ: typ}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		kind := f.Type.Kind()
		if kind == reflect.Pointer {
			kind = f.Type.Elem().Kind()
		}
		s.columns = append(s.columns, column{name: name, index: i, kind: kind})
	}
	return s, nil
}

func structType(row any) reflect.Type {
	t := reflect.TypeOf(row)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// values returns the column values of row; nil pointers become nil
func (s schema) values(row any) []any {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	out := make([]any, len(s.columns))
	for i, c := range s.columns {
		f := v.Field(c.index)
		if f.Kind() == reflect.Pointer {
			if f.IsNil() {
				out[i] = nil
				continue
			}
			f = f.Elem()
		}
		switch {
		case isInt(c.kind):
			out[i] = f.Int()
		case isFloat(c.kind):
			out[i] = f.Float()
		default:
			out[i] = fmt.Sprint(f.Interface())
		}
	}
	return out
}

// text formats a column value for CSV output
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
