package layering

import "reflect"

// Clone returns a deep copy of value. Structs with unexported fields, such as
// time.Time, are copied as a whole; anything they point to stays shared.
func Clone[T any](value T) T {
	return asType[T](cloneValue(reflect.ValueOf(value)))
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out
	case reflect.Interface:
		out := reflect.New(v.Type()).Elem()
		if v.IsNil() {
			return out
		}
		if elem := cloneValue(v.Elem()); elem.IsValid() {
			out.Set(elem)
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		if opaque(v.Type()) {
			out.Set(v)
			return out
		}
		for i := 0; i < v.NumField(); i++ {
			field := out.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}

// opaque reports whether typ has unexported fields. Such structs cannot be
// rebuilt field by field and are treated as a single value.
func opaque(typ reflect.Type) bool {
	for i := 0; i < typ.NumField(); i++ {
		if !typ.Field(i).IsExported() {
			return true
		}
	}
	return false
}
