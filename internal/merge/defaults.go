// Package merge fills unset configuration values from a defaults value.
package merge

import "reflect"

// Defaults returns a copy of value in which every zero field has been replaced
// by the matching field of defaults. Structs and maps are merged recursively;
// map keys present in value win. Slices are treated as scalars: a nil slice
// takes the default, a non-nil one (even empty) is kept.
func Defaults[T any](value, defaults T) T {
	merged := fill(reflect.ValueOf(value), reflect.ValueOf(defaults))
	if !merged.IsValid() {
		var zero T
		return zero
	}
	out := reflect.New(reflect.TypeOf(value)).Elem()
	out.Set(merged)
	return out.Interface().(T)
}

func fill(value, defaults reflect.Value) reflect.Value {
	if !value.IsValid() {
		return clone(defaults)
	}
	if !defaults.IsValid() {
		return clone(value)
	}

	switch value.Kind() {
	case reflect.Struct:
		out := reflect.New(value.Type()).Elem()
		for i := 0; i < value.NumField(); i++ {
			field := out.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(fill(value.Field(i), defaults.Field(i)))
		}
		return out
	case reflect.Pointer:
		if value.IsNil() {
			return clone(defaults)
		}
		// A set pointer to a scalar is an explicit value, even when it points
		// at the zero value.
		if defaults.IsNil() || value.Elem().Kind() != reflect.Struct {
			return clone(value)
		}
		out := reflect.New(value.Type().Elem())
		out.Elem().Set(fill(value.Elem(), defaults.Elem()))
		return out
	case reflect.Map:
		if value.IsNil() {
			return clone(defaults)
		}
		out := reflect.MakeMapWithSize(value.Type(), value.Len()+defaults.Len())
		iter := defaults.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), clone(iter.Value()))
		}
		iter = value.MapRange()
		for iter.Next() {
			key := iter.Key()
			if existing := out.MapIndex(key); existing.IsValid() && iter.Value().Kind() == reflect.Struct {
				out.SetMapIndex(key, fill(iter.Value(), existing))
				continue
			}
			out.SetMapIndex(key, clone(iter.Value()))
		}
		return out
	case reflect.Slice:
		if value.IsNil() {
			return clone(defaults)
		}
		return clone(value)
	default:
		if value.IsZero() {
			return clone(defaults)
		}
		return clone(value)
	}
}

func clone(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(clone(v.Elem()))
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if field := out.Field(i); field.CanSet() {
				field.Set(clone(v.Field(i)))
			}
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), clone(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(clone(v.Index(i)))
		}
		return out
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}
