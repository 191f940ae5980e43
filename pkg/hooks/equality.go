package hooks

import (
	"math"
	"reflect"
)

// Equality compares two values for the purpose of bail-out decisions and
// dependency diffing. It must be reflexive and cheap; the engine may call it
// once per slot per render.
type Equality func(a, b any) bool

// SameValue is the default equality used throughout the engine.
//
// It is a strict same-value check: comparable kinds compare with ==, except
// floats, where NaN is equal to itself and +0 and -0 are distinct. Slices,
// maps, and funcs compare by reference identity, never by contents; deep
// equality would turn dependency diffing into a value comparison, which the
// engine deliberately avoids.
func SameValue(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int8:
		bv, ok := b.(int8)
		return ok && av == bv
	case int16:
		bv, ok := b.(int16)
		return ok && av == bv
	case int32:
		bv, ok := b.(int32)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint:
		bv, ok := b.(uint)
		return ok && av == bv
	case uint8:
		bv, ok := b.(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := b.(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := b.(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float32:
		bv, ok := b.(float32)
		return ok && sameFloat64(float64(av), float64(bv))
	case float64:
		bv, ok := b.(float64)
		return ok && sameFloat64(av, bv)
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return sameReflect(a, b)
}

// sameFloat64 implements same-value float comparison: NaN equals NaN,
// signed zeros are distinct.
func sameFloat64(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

// sameReflect compares values of non-scalar kinds. Comparable kinds use ==,
// reference kinds use pointer identity.
func sameReflect(a, b any) bool {
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Pointer() == vb.Pointer()
	}

	if va.Type().Comparable() {
		return a == b
	}

	// Uncomparable struct/array kinds (containing slices etc.) have no
	// identity to compare; treat every pair as distinct.
	return false
}

// typedEquality adapts an Equality to a typed comparison, falling back to
// SameValue when no override is configured.
func typedEquals[T any](eq Equality, a, b T) bool {
	if eq != nil {
		return eq(a, b)
	}
	return SameValue(a, b)
}

// Deps is a dependency snapshot for UseMemo, UseEffect, and UseLayoutEffect.
//
// A nil Deps means "no dependency array supplied": recompute or re-run on
// every render. An empty non-nil Deps (Deps{}) never changes after the first
// render, so an effect with Deps{} runs only at mount and cleans up only at
// unmount.
type Deps []any

// depsEqual compares two dependency snapshots element-wise.
func depsEqual(eq Equality, old, next Deps) bool {
	if len(old) != len(next) {
		return false
	}
	for i := range next {
		if eq != nil {
			if !eq(old[i], next[i]) {
				return false
			}
		} else if !SameValue(old[i], next[i]) {
			return false
		}
	}
	return true
}
