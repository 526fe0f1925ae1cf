package model

import (
	"regexp"
	"strconv"
	"strings"
)

func constant[T comparable](v T) func() T {
	return func() T { return v }
}

func NewString(def string) *Model[string] {
	return New(constant(def), WithParser(func(s string) (string, bool) { return s, true }))
}

func NewBool(def bool) *Model[bool] {
	return New(constant(def), WithParser(func(s string) (bool, bool) {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		return b, err == nil
	}))
}

// NewInt creates an integer model that rejects values outside [lo, hi].
func NewInt(def, lo, hi int) *Model[int] {
	return New(constant(def),
		WithValidator(func(v int) bool { return v >= lo && v <= hi }),
		WithParser(func(s string) (int, bool) {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			return n, err == nil
		}),
	)
}

func NewFloat(def float64) *Model[float64] {
	return New(constant(def), WithParser(func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}))
}

// Color is an opaque "#rrggbb" value.
type Color string

const (
	Black Color = "#000000"
	White Color = "#ffffff"
	Red   Color = "#ff0000"
	Green Color = "#00ff00"
	Blue  Color = "#0000ff"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func (c Color) Valid() bool {
	return colorPattern.MatchString(string(c))
}

func NewColor(def Color) *Model[Color] {
	return New(constant(def),
		WithValidator(Color.Valid),
		WithParser(func(s string) (Color, bool) {
			return Color(strings.ToLower(strings.TrimSpace(s))), true
		}),
	)
}
