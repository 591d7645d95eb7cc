package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxDepth bounds container nesting for both encoding and decoding.
const MaxDepth = 1000

// Canonicalize returns the canonical bytes of record.
//
// Supported values: nil, bool, string (and string kinds), json.Number, Go
// integer and float kinds, maps with string keys, slices and arrays, and
// pointers or interfaces holding any of these. Nil maps and slices encode as
// {} and []. Byte slices, structs, channels, functions and complex numbers are
// rejected with KindEncoding.
func Canonicalize(record any) ([]byte, error) {
	e := newEncoder("")
	if err := e.encode(record, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// MarshalIndent renders record under the same rules as Canonicalize, but with
// each element on its own line prefixed by indent per nesting level and a
// space after every key colon. It is a human-readable form and is never
// hashed. An empty indent yields the canonical bytes.
func MarshalIndent(record any, indent string) ([]byte, error) {
	e := newEncoder(indent)
	if err := e.encode(record, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type identity struct {
	ptr uintptr
	len int
}

type encoder struct {
	buf    bytes.Buffer
	indent string
	level  int

	// path and ancestors describe the containers on the current descent only;
	// a value reachable twice through siblings is not a cycle.
	path      []string
	ancestors map[identity]struct{}
}

func newEncoder(indent string) *encoder {
	return &encoder{indent: indent, ancestors: make(map[identity]struct{})}
}

func (e *encoder) where() string {
	return "$" + strings.Join(e.path, "")
}

func (e *encoder) fail(ruleID, msg string) error {
	return newError(KindEncoding, ruleID, e.where(), msg)
}

func (e *encoder) encode(v any, depth int) error {
	switch x := v.(type) {
	case nil:
		e.buf.WriteString("null")
		return nil
	case bool:
		e.writeBool(x)
		return nil
	case string:
		return e.writeString(x)
	case json.Number:
		return e.writeNumber(x)
	case float64:
		return e.writeFloat(x)
	case float32:
		return e.writeFloat(float64(x))
	case int:
		e.buf.WriteString(strconv.FormatInt(int64(x), 10))
		return nil
	case int64:
		e.buf.WriteString(strconv.FormatInt(x, 10))
		return nil
	case uint64:
		e.buf.WriteString(strconv.FormatUint(x, 10))
		return nil
	case map[string]any:
		return e.writeObject(reflect.ValueOf(x), depth)
	case []any:
		return e.writeArray(reflect.ValueOf(x), depth)
	}
	return e.encodeReflect(reflect.ValueOf(v), depth)
}

func (e *encoder) encodeReflect(rv reflect.Value, depth int) error {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		return e.encode(rv.Elem().Interface(), depth)
	case reflect.Pointer:
		if rv.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		id := identity{ptr: rv.Pointer(), len: -1}
		if err := e.enter(id, depth); err != nil {
			return err
		}
		defer delete(e.ancestors, id)
		return e.encode(rv.Elem().Interface(), depth+1)
	case reflect.Bool:
		e.writeBool(rv.Bool())
		return nil
	case reflect.String:
		return e.writeString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(rv.Int(), 10))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(rv.Uint(), 10))
		return nil
	case reflect.Float32, reflect.Float64:
		return e.writeFloat(rv.Float())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return e.fail("CANON-TYPE-002", fmt.Sprintf("canon: map key type %s is not a string", rv.Type().Key()))
		}
		return e.writeObject(rv, depth)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.fail("CANON-TYPE-003", "canon: byte slices have no canonical form; encode them as strings")
		}
		return e.writeArray(rv, depth)
	case reflect.Array:
		return e.writeArray(rv, depth)
	default:
		return e.fail("CANON-TYPE-001", fmt.Sprintf("canon: unsupported value of type %s", rv.Type()))
	}
}

// enter records a container on the current descent, rejecting it when it is
// already an ancestor or when the nesting limit is reached.
func (e *encoder) enter(id identity, depth int) error {
	if depth >= MaxDepth {
		return e.fail("CANON-DEPTH-001", fmt.Sprintf("canon: nesting exceeds %d levels", MaxDepth))
	}
	if id.ptr == 0 {
		return nil
	}
	if _, ok := e.ancestors[id]; ok {
		return e.fail("CANON-CYCLE-001", "canon: cyclic reference")
	}
	e.ancestors[id] = struct{}{}
	return nil
}

func containerIdentity(rv reflect.Value) identity {
	if rv.Kind() == reflect.Array || rv.Len() == 0 {
		return identity{}
	}
	if rv.Kind() == reflect.Map {
		return identity{ptr: rv.Pointer()}
	}
	return identity{ptr: rv.Pointer(), len: rv.Len()}
}

func (e *encoder) writeObject(rv reflect.Value, depth int) error {
	id := containerIdentity(rv)
	if err := e.enter(id, depth); err != nil {
		return err
	}
	if id.ptr != 0 {
		defer delete(e.ancestors, id)
	}

	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	e.buf.WriteByte('{')
	e.level++
	for i, k := range keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline()
		name := k.String()
		e.path = append(e.path, keySegment(name))
		if err := e.writeString(name); err != nil {
			return err
		}
		e.buf.WriteByte(':')
		if e.indent != "" {
			e.buf.WriteByte(' ')
		}
		if err := e.encode(rv.MapIndex(k).Interface(), depth+1); err != nil {
			return err
		}
		e.path = e.path[:len(e.path)-1]
	}
	e.level--
	if len(keys) > 0 {
		e.newline()
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) writeArray(rv reflect.Value, depth int) error {
	id := containerIdentity(rv)
	if err := e.enter(id, depth); err != nil {
		return err
	}
	if id.ptr != 0 {
		defer delete(e.ancestors, id)
	}

	n := rv.Len()
	e.buf.WriteByte('[')
	e.level++
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline()
		e.path = append(e.path, "["+strconv.Itoa(i)+"]")
		if err := e.encode(rv.Index(i).Interface(), depth+1); err != nil {
			return err
		}
		e.path = e.path[:len(e.path)-1]
	}
	e.level--
	if n > 0 {
		e.newline()
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) newline() {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < e.level; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *encoder) writeBool(b bool) {
	if b {
		e.buf.WriteString("true")
		return
	}
	e.buf.WriteString("false")
}

const hexDigits = "0123456789abcdef"

func (e *encoder) writeString(s string) error {
	if !utf8.ValidString(s) {
		return e.fail("CANON-UTF8-001", "canon: string is not valid UTF-8")
	}
	e.buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		e.buf.WriteString(s[start:i])
		switch c {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		default:
			e.buf.WriteString(`\u00`)
			e.buf.WriteByte(hexDigits[c>>4])
			e.buf.WriteByte(hexDigits[c&0xf])
		}
		start = i + 1
	}
	e.buf.WriteString(s[start:])
	e.buf.WriteByte('"')
	return nil
}

// keySegment renders a map key as a path segment for error messages.
func keySegment(k string) string {
	if k == "" {
		return `[""]`
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9') {
			return "[" + strconv.Quote(k) + "]"
		}
	}
	return "." + k
}
