// Package demo is a small counter page served at "/" by the CLI.
package demo

import (
	"fmt"
	"strconv"

	"github.com/zeusync/thinui/internal/core/model"
	"github.com/zeusync/thinui/internal/core/session"
	"github.com/zeusync/thinui/internal/core/widget"
)

const (
	CounterMin = -1000
	CounterMax = 1000
)

var palette = []model.Color{model.Blue, model.Red, model.Green}

var _ session.Page = (*Page)(nil)

// Page shares one accent color across all sessions. Every session forks it,
// so a recolor reaches each session until that session picks its own color.
type Page struct {
	accent *model.Model[model.Color]
}

func New() *Page {
	return &Page{accent: model.NewColor(palette[0])}
}

// Accent is the shared prototype of every session's accent color.
func (p *Page) Accent() *model.Model[model.Color] {
	return p.accent
}

// Create lays out: title, decorated counter, -/+ buttons, recolor buttons and
// a name entry with a greeting.
func (p *Page) Create(root *widget.Widget) {
	owner := root.Owner()
	accent := p.accent.Fork()
	counter := model.NewInt(0, CounterMin, CounterMax)
	name := model.NewString("")

	title := widget.NewText(owner, "thinui")
	title.SetColorModel(accent)
	root.Append(title.Widget)

	value := widget.NewText(owner, "0")
	value.SetColorModel(accent)
	follow(value.Widget, counter, func(n int) { value.SetText(strconv.Itoa(n)) })
	frame := widget.NewDecorator(owner)
	frame.Append(value.Widget)
	root.Append(frame)

	buttons := widget.NewPanel(owner)
	buttons.Append(widget.NewButton(owner, "-", func() { counter.SetData(counter.Data() - 1) }).Widget)
	buttons.Append(widget.NewButton(owner, "+", func() { counter.SetData(counter.Data() + 1) }).Widget)
	buttons.Append(widget.NewButton(owner, "recolor all", func() { p.accent.SetData(next(p.accent.Data())) }).Widget)
	buttons.Append(widget.NewButton(owner, "my color", func() { accent.SetData(model.White) }).Widget)
	root.Append(buttons)

	greeting := widget.NewText(owner, "")
	follow(greeting.Widget, name, func(s string) {
		if s == "" {
			greeting.SetText("")
			return
		}
		greeting.SetText(fmt.Sprintf("Hello, %s!", s))
	})
	root.Append(widget.NewEntry(owner, name).Widget)
	root.Append(greeting.Widget)
}

// follow calls fn on every change of m for as long as w lives.
func follow[T comparable](w *widget.Widget, m *model.Model[T], fn func(T)) {
	sub := m.AddListener(model.ListenerFunc[T](fn))
	w.Track(sub.Release)
}

func next(c model.Color) model.Color {
	for i, p := range palette {
		if p == c {
			return palette[(i+1)%len(palette)]
		}
	}
	return palette[0]
}
