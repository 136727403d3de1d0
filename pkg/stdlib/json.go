package stdlib

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// JSON is the `json` library. Object key order survives a parse/stringify
// round trip.
func JSON() runtime.NativeModule {
	return runtime.NativeModule{
		"json": {
			Functions: map[string]runtime.NativeFunc{
				"parse": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("parse", args, 1, 1); err != nil {
						return nil, err
					}
					text, err := StringArg("parse", args, 0)
					if err != nil {
						return nil, err
					}
					return ParseJSON(text)
				},
				"stringify": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("stringify", args, 1, 2); err != nil {
						return nil, err
					}
					indent := 0
					if len(args) == 2 {
						n, err := IntArg("stringify", args, 1)
						if err != nil {
							return nil, err
						}
						indent = n
					}
					text, err := StringifyJSON(args[0], indent)
					if err != nil {
						return nil, err
					}
					return str(text), nil
				},
			},
		},
	}
}

// ParseJSON decodes a single JSON document.
func ParseJSON(text string) (runtime.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	val, err := decodeJSON(dec)
	if err != nil {
		return nil, jsonSyntaxError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, diag.Errorf(diag.SyntaxError, "json: unexpected data after top-level value")
	}
	return val, nil
}

func jsonSyntaxError(err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		return err
	}
	return diag.Errorf(diag.SyntaxError, "json: %s", err)
}

func decodeJSON(dec *json.Decoder) (runtime.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			list := runtime.NewList()
			for dec.More() {
				el, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements, el)
			}
			_, err := dec.Token()
			return list, err
		case '{':
			obj := runtime.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(keyTok.(string), val)
			}
			_, err := dec.Token()
			return obj, err
		default:
			return nil, diag.Errorf(diag.SyntaxError, "json: unexpected %q", t)
		}
	case string:
		return str(t), nil
	case float64:
		return number(t), nil
	case bool:
		return runtime.Bool(t), nil
	case nil:
		return runtime.Null, nil
	default:
		return nil, diag.Errorf(diag.SyntaxError, "json: unexpected token %v", tok)
	}
}

// StringifyJSON encodes v with objects in insertion order. indent > 0 pretty
// prints with that many spaces.
func StringifyJSON(v runtime.Value, indent int) (string, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, v); err != nil {
		return "", err
	}
	if indent <= 0 {
		return buf.String(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", strings.Repeat(" ", indent)); err != nil {
		return "", err
	}
	return out.String(), nil
}

func encodeJSON(buf *bytes.Buffer, v runtime.Value) error {
	switch val := runtime.Unwrap(v).(type) {
	case runtime.NullValue:
		buf.WriteString("null")
	case runtime.BoolValue:
		if val.Val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case runtime.NumberValue:
		if math.IsNaN(val.Val) || math.IsInf(val.Val, 0) {
			return diag.Errorf(diag.RangeError, "json: cannot encode %s", runtime.FormatNumber(val.Val))
		}
		buf.WriteString(runtime.FormatNumber(val.Val))
	case runtime.StringValue:
		return writeJSONString(buf, val.Val)
	case *runtime.ListValue:
		buf.WriteByte('[')
		for idx, el := range val.Elements {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *runtime.ObjectValue:
		buf.WriteByte('{')
		for idx, key := range val.Keys() {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			field, _ := val.Get(key)
			if err := encodeJSON(buf, field); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return diag.Errorf(diag.TypeError, "json: cannot encode %s", runtime.TypeName(v))
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}
