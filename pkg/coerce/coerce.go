// Package coerce holds the promotion table: for every left operand kind, the
// right operand kinds that can be converted into it before a checked
// operation, and the single conversion routine that performs it.
package coerce

import (
	"math"
	"sort"
	"strings"

	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/types"
	"github.com/xplshn/omnia/pkg/value"
)

type kindSet map[types.Kind]bool

func setOf(kinds ...types.Kind) kindSet {
	s := make(kindSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

var (
	signedSources   = []types.Kind{types.Byte, types.Int, types.Long, types.Decimal}
	unsignedSources = []types.Kind{types.UByte, types.UInt, types.ULong}
)

// table maps a left kind to the right kinds that convert into it. Signed and
// unsigned integer families never cross.
var table = map[types.Kind]kindSet{
	types.Byte:  setOf(signedSources...),
	types.Int:   setOf(signedSources...),
	types.Long:  setOf(signedSources...),
	types.UByte: setOf(append(unsignedSources, types.Decimal)...),
	types.UInt:  setOf(append(unsignedSources, types.Decimal)...),
	types.ULong: setOf(unsignedSources...),
	types.Decimal: setOf(
		types.Byte, types.UByte, types.Int, types.UInt,
		types.Long, types.ULong, types.Decimal,
	),
}

// Options tunes conversions.
type Options struct {
	// StrictNarrowing rejects decimal to integer conversions that would drop
	// a fractional part.
	StrictNarrowing bool
}

// Accepts reports whether a right operand of kind source converts into target.
func Accepts(target, source types.Kind) bool { return table[target][source] }

// Sources lists the kinds accepted by target in declaration order.
func Sources(target types.Kind) []types.Kind {
	var out []types.Kind
	for k := range table[target] {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Into converts v into kind target. op is the operator symbol used in the
// error when the pair has no table entry.
func Into(op string, target types.Kind, v value.Value, opt Options) (value.Value, error) {
	source := value.KindOf(v)
	if source == target {
		return v, nil
	}
	if !Accepts(target, source) {
		return nil, errs.Coercion(op, target.String(), source.String())
	}
	conversion := "converting " + source.String() + " operand"
	var (
		out value.Value
		err error
	)
	switch {
	case source.IsSigned():
		x, _ := value.Int64Of(v)
		out, err = value.FromInt64(target, x)
	case source.IsUnsigned():
		x, _ := value.Uint64Of(v)
		out, err = value.FromUint64(target, x)
	case source == types.Decimal:
		f := v.AsDecimal()
		if opt.StrictNarrowing && target.IsInteger() && f != math.Trunc(f) {
			return nil, &errs.Error{
				Kind:      errs.RangeExceeded,
				Op:        op,
				Left:      target.String(),
				Right:     source.String(),
				Operation: conversion,
				Msg:       "decimal " + v.String() + " has a fractional part and cannot narrow to " + target.String(),
			}
		}
		out, err = value.FromFloat(target, f)
	default:
		return nil, errs.New(errs.Internal, "promotion table accepts %s into %s without a conversion", source, target)
	}
	if err != nil {
		return nil, errs.Range(target.String(), conversion)
	}
	return out, nil
}

// Concat joins the rendering of two operands, text first: when only the
// right operand is char[], its text leads and the left rendering follows.
func Concat(left, right value.Value) value.CharArray {
	var sb strings.Builder
	if value.KindOf(left) != types.CharArray && value.KindOf(right) == types.CharArray {
		left, right = right, left
	}
	sb.WriteString(left.String())
	sb.WriteString(right.String())
	return value.Text(sb.String())
}
