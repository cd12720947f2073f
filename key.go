// key.go: key derivation for memoizers and single-flight groups
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// KeyFunc derives a cache key from call arguments.
// It must be deterministic and total over the arguments it is used with.
type KeyFunc[A any, K comparable] func(args A) K

// StructuralKey is the default KeyFunc: a stable structural serialization of
// args, prefixed with the dynamic type so that values of different types
// (1 and 1.0 passed as any) never share a key.
//
// Arguments whose JSON form is complete use it, so equal structs, slices and
// maps (map keys are sorted) produce equal keys. Types JSON would encode
// partially (unexported or "-" tagged struct fields) and values JSON cannot
// encode (channels, functions, cyclic data) use their Go syntax
// representation from fmt instead.
//
// Numbers held in interface-typed fields or elements are keyed by value:
// []any{1} and []any{1.0} share a key. Use MemoizeBy with an explicit
// KeyFunc when that matters.
func StructuralKey[A any](args A) string {
	switch v := any(args).(type) {
	case nil:
		return "nil"
	case string:
		return "string:" + strconv.Quote(v)
	case int:
		return "int:" + strconv.Itoa(v)
	case int64:
		return "int64:" + strconv.FormatInt(v, 10)
	case uint64:
		return "uint64:" + strconv.FormatUint(v, 10)
	case bool:
		return "bool:" + strconv.FormatBool(v)
	}

	if !jsonComplete(reflect.TypeOf(any(args))) {
		return fmt.Sprintf("%T:%#v", args, args)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%T:%#v", args, args)
	}
	return fmt.Sprintf("%T:%s", args, data)
}

var (
	jsonMarshalerType  = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	jsonCompleteByType sync.Map // reflect.Type -> bool
)

// jsonComplete reports whether json.Marshal keeps every field of t.
// Results are cached per type.
func jsonComplete(t reflect.Type) bool {
	if v, ok := jsonCompleteByType.Load(t); ok {
		return v.(bool)
	}
	complete := jsonCompleteType(t, make(map[reflect.Type]bool))
	jsonCompleteByType.Store(t, complete)
	return complete
}

func jsonCompleteType(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] || t.Implements(jsonMarshalerType) {
		return true
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("json") == "-" {
				return false
			}
			if !jsonCompleteType(f.Type, seen) {
				return false
			}
		}
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return jsonCompleteType(t.Elem(), seen)
	case reflect.Map:
		return jsonCompleteType(t.Key(), seen) && jsonCompleteType(t.Elem(), seen)
	}
	return true
}

// keyString converts a comparable key to a string that is unique per key,
// for APIs such as singleflight that only accept string keys. The dynamic
// type is part of the result so keys of different types never collide.
func keyString[K comparable](key K) string {
	switch v := any(key).(type) {
	case string:
		return "s:" + v
	case int:
		return "i:" + strconv.Itoa(v)
	case int64:
		return "i64:" + strconv.FormatInt(v, 10)
	case uint64:
		return "u64:" + strconv.FormatUint(v, 10)
	default:
		return fmt.Sprintf("%T:%#v", key, key)
	}
}
