package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/kbukum/eventstream/errors"
)

// Marshaler lets a type choose its own data lines.
type Marshaler interface {
	MarshalEventData() ([]string, error)
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// FormatData renders data as the data: block of a message, one "data: "
// line per line of output, without the terminating blank line.
//
// nil, false, zero numbers, NaN, empty strings, functions and channels are
// rejected with an InvalidData error. Maps, structs, slices and arrays are
// encoded as tab-indented JSON with the indentation removed.
func FormatData(data any) ([]byte, error) {
	lines, err := dataLines(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func dataLines(data any) ([]string, error) {
	if isEmpty(data) {
		return nil, errors.InvalidData()
	}

	switch v := data.(type) {
	case Marshaler:
		lines, err := v.MarshalEventData()
		if err != nil {
			return nil, errors.InvalidData().WithCause(err)
		}
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			out = append(out, splitLines(strings.TrimLeft(l, "\t"))...)
		}
		return out, nil
	case string:
		return splitLines(v), nil
	case []byte:
		return splitLines(string(v)), nil
	case json.Marshaler:
		return jsonLines(v)
	}

	rv := reflect.Indirect(reflect.ValueOf(data))
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return jsonLines(data)
	}

	if s, ok := data.(fmt.Stringer); ok {
		return splitLines(s.String()), nil
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return []string{strconv.FormatFloat(rv.Float(), 'g', -1, 64)}, nil
	}
	return splitLines(fmt.Sprint(rv.Interface())), nil
}

func jsonLines(v any) ([]string, error) {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return nil, errors.InvalidData().WithCause(err)
	}
	lines := strings.Split(string(raw), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, "\t")
	}
	return lines, nil
}

func splitLines(s string) []string {
	return strings.Split(lineBreaks.Replace(s), "\n")
}

// isEmpty reports the values that cannot be sent.
func isEmpty(data any) bool {
	if data == nil {
		return true
	}
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmpty(rv.Elem().Interface())
	case reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return true
		}
		if b, ok := data.([]byte); ok {
			return len(b) == 0
		}
		return false
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	}
	return false
}

// frame is the per-stream view needed to write one message.
type frame struct {
	opts   *Options
	connID string
	legacy bool
}

// encode builds the complete message for p. Nothing is produced if the
// data cannot be formatted.
func (f frame) encode(p Payload) ([]byte, error) {
	data, err := FormatData(p.Data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if f.opts.PadForIE || f.legacy {
		buf.WriteString(": ")
		buf.WriteString(strings.Repeat(";", f.opts.PaddingSize))
		buf.WriteByte('\n')
	}
	if p.Comment != "" {
		for _, line := range splitLines(p.Comment) {
			buf.WriteString(": ")
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	if p.ID != "" && !f.opts.NoIDs {
		buf.WriteString("id: ")
		buf.WriteString(singleLine(p.ID))
		buf.WriteByte('\n')
	}
	if p.Retry > 0 {
		buf.WriteString("retry: ")
		buf.WriteString(strconv.Itoa(p.Retry))
		buf.WriteByte('\n')
	}
	event := p.Event
	if event == "" {
		event = f.opts.PreferredEventName
	}
	if event != "" {
		buf.WriteString("event: ")
		buf.WriteString(singleLine(event))
		buf.WriteByte('\n')
	}
	if f.connID != "" {
		buf.WriteString("sse_id: ")
		buf.WriteString(singleLine(f.connID))
		buf.WriteByte('\n')
	}
	buf.Write(data)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// singleLine keeps only the first line so a field cannot inject others.
func singleLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
