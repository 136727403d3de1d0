package runtime

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders integral numbers without a fractional part.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Stringify renders v the way `print` and `str` show it. Strings are bare at
// the top level and quoted inside containers.
func Stringify(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v, false)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, nested bool) {
	switch val := Unwrap(v).(type) {
	case nil, NullValue:
		sb.WriteString("null")
	case NumberValue:
		sb.WriteString(FormatNumber(val.Val))
	case BoolValue:
		sb.WriteString(strconv.FormatBool(val.Val))
	case StringValue:
		if nested {
			sb.WriteString(strconv.Quote(val.Val))
		} else {
			sb.WriteString(val.Val)
		}
	case *ListValue:
		sb.WriteByte('[')
		for i, el := range val.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, el, true)
		}
		sb.WriteByte(']')
	case *ObjectValue:
		if val.Len() == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{ ")
		for i, key := range val.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(key)
			sb.WriteString(": ")
			writeValue(sb, val.fields[key], true)
		}
		sb.WriteString(" }")
	case *FunctionValue:
		if val.Name == "" {
			sb.WriteString("<fn>")
		} else {
			sb.WriteString("<fn " + val.Name + ">")
		}
	case NativeFunctionValue:
		sb.WriteString("<native fn " + val.Name + ">")
	default:
		sb.WriteString("<" + v.Kind().String() + ">")
	}
}

// TypeName is the user-facing type of v; both function kinds are "function".
func TypeName(v Value) string {
	switch Unwrap(v).Kind() {
	case KindNativeFunction:
		return KindFunction.String()
	default:
		return Unwrap(v).Kind().String()
	}
}

// Equal compares by kind, then by value. Lists compare element-wise and objects
// key-wise; functions compare by identity.
func Equal(a, b Value) bool {
	a, b = Unwrap(a), Unwrap(b)
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case NullValue:
		return true
	case NumberValue:
		return av.Val == b.(NumberValue).Val
	case BoolValue:
		return av.Val == b.(BoolValue).Val
	case StringValue:
		return av.Val == b.(StringValue).Val
	case *ListValue:
		bv := b.(*ListValue)
		if av == bv {
			return true
		}
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *ObjectValue:
		bv := b.(*ObjectValue)
		if av == bv {
			return true
		}
		if av.Len() != bv.Len() {
			return false
		}
		for key, val := range av.fields {
			other, ok := bv.fields[key]
			if !ok || !Equal(val, other) {
				return false
			}
		}
		return true
	case *FunctionValue:
		return av == b.(*FunctionValue)
	case NativeFunctionValue:
		return av.Name == b.(NativeFunctionValue).Name
	default:
		return false
	}
}
