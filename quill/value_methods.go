package quill

import (
	"cmp"
	"fmt"
	"hash/maphash"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

var hashSeed = maphash.MakeSeed()

func (k ValueKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindFunction, KindBuiltin:
		return "function"
	case KindHost:
		return "host"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders the value for display. Reference cycles print as [...]
// or {...}.
func (v Value) String() string {
	var b strings.Builder
	v.format(&b, make(map[any]bool))
	return b.String()
}

func (v Value) format(b *strings.Builder, seen map[any]bool) {
	switch v.kind {
	case KindUndefined:
		b.WriteString("undefined")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.data.(bool)))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.data.(int64), 10))
	case KindFloat:
		b.WriteString(formatFloat(v.data.(float64)))
	case KindString:
		b.WriteString(v.data.(string))
	case KindList:
		l := v.data.(*List)
		if seen[l] {
			b.WriteString("[...]")
			return
		}
		seen[l] = true
		defer delete(seen, l)
		b.WriteByte('[')
		for i, item := range l.items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.formatNested(b, seen)
		}
		b.WriteByte(']')
	case KindObject:
		o := v.data.(*Object)
		if seen[o] {
			b.WriteString("{...}")
			return
		}
		seen[o] = true
		defer delete(seen, o)
		keys := make([]string, 0, len(o.fields))
		for k := range o.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			o.fields[k].formatNested(b, seen)
		}
		b.WriteByte('}')
	case KindFunction:
		fn := v.data.(*Function)
		fmt.Fprintf(b, "<function %s>", fn.displayName())
	case KindBuiltin:
		fmt.Fprintf(b, "<builtin %s>", v.data.(*Builtin).Name)
	case KindHost:
		fmt.Fprintf(b, "<host %T>", v.data)
	default:
		fmt.Fprintf(b, "<%v>", v.kind)
	}
}

func (v Value) formatNested(b *strings.Builder, seen map[any]bool) {
	if v.kind == KindString {
		b.WriteString(strconv.Quote(v.data.(string)))
		return
	}
	v.format(b, seen)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (fn *Function) displayName() string {
	if fn.Name == "" {
		return "<anonymous>"
	}
	return fn.Name
}

// Truthy reports whether the value counts as true in a condition.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindUndefined:
		return false
	case KindBool:
		return v.data.(bool)
	case KindInt:
		return v.data.(int64) != 0
	case KindFloat:
		return v.data.(float64) != 0
	case KindString:
		return v.data.(string) != ""
	case KindList:
		return len(v.data.(*List).items) > 0
	default:
		return true
	}
}

// Equal compares primitives by value, promoting int to double when the
// kinds are mixed, and reference kinds by identity.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.data.(int64) == other.data.(int64)
		}
		return v.Float() == other.Float()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUndefined:
		return true
	case KindBool:
		return v.data.(bool) == other.data.(bool)
	case KindString:
		return v.data.(string) == other.data.(string)
	case KindList:
		return v.data.(*List) == other.data.(*List)
	case KindObject:
		return v.data.(*Object) == other.data.(*Object)
	case KindFunction:
		return v.data.(*Function) == other.data.(*Function)
	case KindBuiltin:
		return v.data.(*Builtin) == other.data.(*Builtin)
	case KindHost:
		return sameHost(v.data, other.data)
	default:
		return false
	}
}

func sameHost(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() == reflect.Pointer && rb.Kind() == reflect.Pointer {
		return ra.Pointer() == rb.Pointer()
	}
	if ra.Type().Comparable() && rb.Type().Comparable() {
		return a == b
	}
	return false
}

// Hash is consistent with Equal: numbers hash by their double value, so an
// int and any double it compares equal to hash alike. Reference kinds hash
// by identity.
func (v Value) Hash() uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	switch v.kind {
	case KindUndefined:
		return 0
	case KindBool:
		if v.data.(bool) {
			return 1
		}
		return 2
	case KindInt, KindFloat:
		f := v.Float()
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return hashInt(&h, int64(f))
		}
		h.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		return h.Sum64()
	case KindString:
		h.WriteString(v.data.(string))
		return h.Sum64()
	case KindHost:
		rv := reflect.ValueOf(v.data)
		if rv.Kind() == reflect.Pointer {
			return hashInt(&h, int64(rv.Pointer()))
		}
		h.WriteString(fmt.Sprintf("%v", v.data))
		return h.Sum64()
	default:
		return hashInt(&h, int64(reflect.ValueOf(v.data).Pointer()))
	}
}

func hashInt(h *maphash.Hash, i int64) uint64 {
	h.WriteString(strconv.FormatInt(i, 10))
	return h.Sum64()
}

// Compare orders two numbers or two strings, returning -1, 0 or 1. A NaN
// operand yields ErrUnordered. Any other pairing is a TypeError.
func (v Value) Compare(other Value) (int, error) {
	switch {
	case v.kind == KindInt && other.kind == KindInt:
		return cmp.Compare(v.data.(int64), other.data.(int64)), nil
	case v.IsNumber() && other.IsNumber():
		a, b := v.Float(), other.Float()
		if math.IsNaN(a) || math.IsNaN(b) {
			return 0, ErrUnordered
		}
		return cmp.Compare(a, b), nil
	case v.kind == KindString && other.kind == KindString:
		return strings.Compare(v.data.(string), other.data.(string)), nil
	default:
		return 0, faultf(ErrorType, "cannot compare %s with %s", v.kind, other.kind)
	}
}
