// Package layering overlays snapshots of the same type so that set fields in a
// stronger snapshot win while unset fields fall through to weaker ones.
//
// "Unset" means a nil pointer, map, slice or interface. Scalar fields are
// always taken from the stronger snapshot, so callers that need optional
// scalars should model them as pointers. Structs with unexported fields
// (time.Time for one) behave like scalars.
package layering

import "reflect"

// MergeLayers composes snapshots ordered from strongest to weakest and returns
// a detached value; none of the inputs are aliased by the result.
func MergeLayers[T any](layers ...T) T {
	var zero T
	if len(layers) == 0 {
		return zero
	}

	merged := cloneValue(reflect.ValueOf(layers[len(layers)-1]))
	for i := len(layers) - 2; i >= 0; i-- {
		merged = overlay(reflect.ValueOf(layers[i]), merged)
	}
	return asType[T](merged)
}

// Overlay merges strong over weak.
func Overlay[T any](strong, weak T) T {
	return MergeLayers(strong, weak)
}

func overlay(strong, weak reflect.Value) reflect.Value {
	if !strong.IsValid() {
		return cloneValue(weak)
	}

	switch strong.Kind() {
	case reflect.Pointer:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Pointer && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		out := reflect.New(strong.Type().Elem())
		out.Elem().Set(overlay(strong.Elem(), weakElem))
		return out
	case reflect.Interface:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Interface && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		merged := overlay(strong.Elem(), weakElem)
		out := reflect.New(strong.Type()).Elem()
		out.Set(merged)
		return out
	case reflect.Struct:
		if opaque(strong.Type()) {
			return cloneValue(strong)
		}
		out := reflect.New(strong.Type()).Elem()
		sameType := weak.IsValid() && weak.Type() == strong.Type()
		for i := 0; i < strong.NumField(); i++ {
			field := out.Field(i)
			if !field.CanSet() {
				continue
			}
			var weakField reflect.Value
			if sameType {
				weakField = weak.Field(i)
			}
			field.Set(overlay(strong.Field(i), weakField))
		}
		return out
	case reflect.Map:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		out := reflect.MakeMapWithSize(strong.Type(), strong.Len())
		if weak.IsValid() && weak.Kind() == reflect.Map && !weak.IsNil() && weak.Type() == strong.Type() {
			iter := weak.MapRange()
			for iter.Next() {
				out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
			}
		}
		iter := strong.MapRange()
		for iter.Next() {
			key := iter.Key()
			if existing := out.MapIndex(key); existing.IsValid() {
				out.SetMapIndex(key, overlay(iter.Value(), existing))
				continue
			}
			out.SetMapIndex(key, cloneValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		return cloneValue(strong)
	case reflect.Array:
		out := reflect.New(strong.Type()).Elem()
		for i := 0; i < strong.Len(); i++ {
			var weakElem reflect.Value
			if weak.IsValid() && weak.Kind() == reflect.Array && weak.Len() > i {
				weakElem = weak.Index(i)
			}
			out.Index(i).Set(overlay(strong.Index(i), weakElem))
		}
		return out
	default:
		return cloneValue(strong)
	}
}

func asType[T any](v reflect.Value) T {
	var zero T
	if !v.IsValid() {
		return zero
	}
	if out, ok := v.Interface().(T); ok {
		return out
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	if v.Type().ConvertibleTo(target) {
		return v.Convert(target).Interface().(T)
	}
	return zero
}
