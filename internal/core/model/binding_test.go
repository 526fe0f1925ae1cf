package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindFiresImmediately(t *testing.T) {
	m := NewString("hello")
	r := &recorder[string]{}
	b := Bind[string](m, r)

	assert.Equal(t, []string{"hello"}, r.got())
	assert.Same(t, m, b.Model())

	m.SetData("world")
	assert.Equal(t, []string{"hello", "world"}, r.got())
}

func TestSetModelMovesListenerWithoutFiring(t *testing.T) {
	first := NewString("first")
	second := NewString("second")
	r := &recorder[string]{}
	b := Bind[string](first, r)

	b.SetModel(first)
	b.SetModel(second)
	assert.Equal(t, []string{"first"}, r.got())

	first.SetData("ignored")
	second.SetData("heard")
	assert.Equal(t, []string{"first", "heard"}, r.got())
	assert.Equal(t, 0, first.Listeners())

	b.Refresh()
	assert.Equal(t, []string{"first", "heard", "heard"}, r.got())
}

func TestBindingRelease(t *testing.T) {
	m := NewString("")
	r := &recorder[string]{}
	b := Bind[string](m, r)
	b.Release()

	m.SetData("after")
	assert.Equal(t, []string{""}, r.got())
	assert.Equal(t, 0, m.Listeners())
}

func TestBindingFollowsForkScenario(t *testing.T) {
	a := NewColor(Black)
	b := a.Fork()
	r := &recorder[Color]{}
	Bind[Color](b, r)

	a.SetData(Red)
	b.SetData(Blue)
	a.SetData(Green)

	assert.Equal(t, []Color{Black, Red, Blue}, r.got())
}
