package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
)

// DecodeJSON decodes exactly one JSON value into a record tree.
//
// Objects become map[string]any, arrays []any and numbers json.Number, so the
// literal survives until Canonicalize renders it. Duplicate object keys,
// invalid UTF-8, unpaired surrogate escapes, trailing data and nesting beyond
// MaxDepth are rejected with KindDecode.
func DecodeJSON(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, newError(KindDecode, "CANON-DECODE-004", "", "canon: input is not valid UTF-8")
	}
	d := &decoder{data: data, dec: json.NewDecoder(bytes.NewReader(data))}
	d.dec.UseNumber()

	v, err := d.value(0)
	if err != nil {
		return nil, err
	}
	if _, err := d.dec.Token(); err != io.EOF {
		return nil, newError(KindDecode, "CANON-DECODE-003", "", "canon: unexpected data after top-level value")
	}
	return v, nil
}

// DecodeJSONC is DecodeJSON for JSON with comments and trailing commas.
func DecodeJSONC(data []byte) (any, error) {
	return DecodeJSON(jsonc.ToJSON(data))
}

type decoder struct {
	data []byte
	dec  *json.Decoder
	path []string
}

func (d *decoder) where() string {
	p := "$"
	for _, s := range d.path {
		p += s
	}
	return p
}

func (d *decoder) token() (json.Token, error) {
	start := d.dec.InputOffset()
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, wrapError(KindDecode, "CANON-DECODE-001", d.where(), "canon: malformed JSON", err)
	}
	// encoding/json turns a lone surrogate escape into U+FFFD, which would
	// make "\ud800" and "\ufffd" commit identically.
	if _, ok := tok.(string); ok && hasLoneSurrogate(d.data[start:d.dec.InputOffset()]) {
		return nil, newError(KindDecode, "CANON-DECODE-005", d.where(), "canon: unpaired UTF-16 surrogate escape")
	}
	return tok, nil
}

// hasLoneSurrogate scans the first string literal in raw, which may be
// preceded by separators, for a \uD800-\uDFFF escape not forming a pair.
func hasLoneSurrogate(raw []byte) bool {
	i := bytes.IndexByte(raw, '"')
	if i < 0 {
		return false
	}
	for i++; i < len(raw) && raw[i] != '"'; i++ {
		if raw[i] != '\\' {
			continue
		}
		i++
		if i >= len(raw) || raw[i] != 'u' {
			continue
		}
		r, ok := hex4(raw[i+1:])
		if !ok {
			return false
		}
		i += 4
		switch {
		case r >= 0xDC00 && r <= 0xDFFF:
			return true
		case r >= 0xD800 && r <= 0xDBFF:
			rest := raw[i+1:]
			if len(rest) < 6 || rest[0] != '\\' || rest[1] != 'u' {
				return true
			}
			lo, ok := hex4(rest[2:])
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return true
			}
			i += 6
		}
	}
	return false
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		switch {
		case '0' <= c && c <= '9':
			c -= '0'
		case 'a' <= c && c <= 'f':
			c = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}

func (d *decoder) value(depth int) (any, error) {
	tok, err := d.token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	if depth >= MaxDepth {
		return nil, newError(KindDecode, "CANON-DEPTH-002", d.where(), fmt.Sprintf("canon: nesting exceeds %d levels", MaxDepth))
	}
	switch delim {
	case '{':
		return d.object(depth + 1)
	case '[':
		return d.array(depth + 1)
	default:
		return nil, newError(KindDecode, "CANON-DECODE-001", d.where(), "canon: unexpected "+strconv.QuoteRune(rune(delim)))
	}
}

func (d *decoder) object(depth int) (map[string]any, error) {
	out := make(map[string]any)
	for d.dec.More() {
		tok, err := d.token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, newError(KindDecode, "CANON-DECODE-001", d.where(), "canon: object key is not a string")
		}
		if _, dup := out[key]; dup {
			return nil, newError(KindDecode, "CANON-DECODE-002", d.where(), "canon: duplicate object key "+strconv.Quote(key))
		}
		d.path = append(d.path, keySegment(key))
		v, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		d.path = d.path[:len(d.path)-1]
		out[key] = v
	}
	if _, err := d.token(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *decoder) array(depth int) ([]any, error) {
	out := make([]any, 0)
	for i := 0; d.dec.More(); i++ {
		d.path = append(d.path, "["+strconv.Itoa(i)+"]")
		v, err := d.value(depth)
		if err != nil {
			return nil, err
		}
		d.path = d.path[:len(d.path)-1]
		out = append(out, v)
	}
	if _, err := d.token(); err != nil {
		return nil, err
	}
	return out, nil
}
