package widget

import "github.com/zeusync/thinui/internal/core/model"

const (
	PropertyText  = "text"
	PropertyColor = "color"

	EventClick  = "click"
	EventChange = "change"
)

// Text displays a string. The color property is only sent once a color model
// is attached.
type Text struct {
	*Widget
	text  *model.Binding[string]
	color *model.Binding[model.Color]
}

func NewText(owner Owner, text string) *Text {
	w := New(owner, KindText)
	m := model.NewString("")
	m.SetData(text)
	return &Text{
		Widget: w,
		text:   BindProperty(w, PropertyText, m),
	}
}

func (t *Text) Text() string {
	return t.text.Model().Data()
}

func (t *Text) SetText(s string) {
	t.text.Model().SetData(s)
}

func (t *Text) TextModel() *model.Model[string] {
	return t.text.Model()
}

// SetTextModel rebinds the text and resends the new model's value.
func (t *Text) SetTextModel(m *model.Model[string]) {
	if m == t.text.Model() {
		return
	}
	t.text.SetModel(m)
	t.text.Refresh()
}

// ColorModel returns nil until SetColorModel was called.
func (t *Text) ColorModel() *model.Model[model.Color] {
	if t.color == nil {
		return nil
	}
	return t.color.Model()
}

// SetColorModel binds the color property to m and sends its value.
func (t *Text) SetColorModel(m *model.Model[model.Color]) {
	if t.color == nil {
		t.color = BindProperty(t.Widget, PropertyColor, m)
		return
	}
	if m == t.color.Model() {
		return
	}
	t.color.SetModel(m)
	t.color.Refresh()
}

// Button shows a label and reports clicks.
type Button struct {
	*Widget
	label *model.Binding[string]
}

func NewButton(owner Owner, label string, onClick func()) *Button {
	w := New(owner, KindButton)
	m := model.NewString("")
	m.SetData(label)
	b := &Button{
		Widget: w,
		label:  BindProperty(w, PropertyText, m),
	}
	w.On(EventClick, func(*Widget, string) { onClick() })
	return b
}

func (b *Button) Label() *model.Model[string] {
	return b.label.Model()
}

// Entry is an editable field writing the renderer's input back into its model.
type Entry[T comparable] struct {
	*Widget
	value *model.Binding[T]
}

// NewEntry binds m to the entry's text. Input the model rejects is dropped.
func NewEntry[T comparable](owner Owner, m *model.Model[T]) *Entry[T] {
	w := New(owner, KindEntry)
	e := &Entry[T]{
		Widget: w,
		value:  BindProperty(w, PropertyText, m),
	}
	w.On(EventChange, func(_ *Widget, payload string) {
		e.value.Model().SetText(payload)
	})
	return e
}

func (e *Entry[T]) Model() *model.Model[T] {
	return e.value.Model()
}

func NewPanel(owner Owner) *Widget {
	return New(owner, KindPanel)
}

func NewDecorator(owner Owner) *Widget {
	return New(owner, KindDecorator)
}
