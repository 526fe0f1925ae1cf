// Package instruction defines the update records shipped to the remote
// renderer and the collector that drains them in creation order.
package instruction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/zeusync/thinui/internal/core/ids"
)

const (
	ActionCreate      = "create"
	ActionReset       = "reset"
	ActionSubscribe   = "subscribe"
	ActionAppendChild = "append child"
	ActionSetChild    = "set child"
	ActionRemoveChild = "remove child"

	// setPrefix starts every property-setting action, e.g. "set text".
	setPrefix = "set "
)

// reserved wire keys; payload fields may not use them.
var reserved = map[string]bool{"id": true, "widget": true, "action": true}

// Instruction is an immutable record of one state change on one widget. ID
// is the only ordering key.
type Instruction struct {
	ID      ids.ID
	Widget  ids.ID
	Action  string
	payload map[string]any
}

func newInstruction(widget ids.ID, action string, payload map[string]any) Instruction {
	for k := range payload {
		if reserved[k] {
			panic(fmt.Sprintf("instruction: payload key %q is reserved", k))
		}
	}
	return Instruction{
		ID:      ids.Next(),
		Widget:  widget,
		Action:  action,
		payload: payload,
	}
}

func Create(widget ids.ID, typ string) Instruction {
	return newInstruction(widget, ActionCreate, map[string]any{"type": typ})
}

// Reset tells the renderer to drop all local state and start a new session.
// Its target is the invalid id.
func Reset() Instruction {
	return newInstruction(ids.Invalid, ActionReset, nil)
}

// Subscribe asks the renderer to start forwarding events of the given type
// for the widget.
func Subscribe(widget ids.ID, event string) Instruction {
	return newInstruction(widget, ActionSubscribe, map[string]any{"event": event})
}

func AppendChild(widget, child ids.ID) Instruction {
	return newInstruction(widget, ActionAppendChild, map[string]any{"child": child})
}

func SetChild(widget, child ids.ID) Instruction {
	return newInstruction(widget, ActionSetChild, map[string]any{"child": child})
}

func RemoveChild(widget, child ids.ID) Instruction {
	return newInstruction(widget, ActionRemoveChild, map[string]any{"child": child})
}

// Set records a property change. The payload carries one field named after
// the property.
func Set(widget ids.ID, property string, value any) Instruction {
	return newInstruction(widget, setPrefix+property, map[string]any{property: value})
}

// IsSet reports whether the instruction is a property setter.
func (i Instruction) IsSet() bool {
	return strings.HasPrefix(i.Action, setPrefix) && i.Action != ActionSetChild
}

// Field returns one payload value.
func (i Instruction) Field(key string) (any, bool) {
	v, ok := i.payload[key]
	return v, ok
}

// Payload returns a copy of the action-specific fields.
func (i Instruction) Payload() map[string]any {
	return maps.Clone(i.payload)
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %s %s %v", i.ID, i.Widget, i.Action, i.payload)
}

// MarshalJSON writes the flat wire shape
// {"id": "#n", "widget": "#m", "action": "...", <payload fields>}
// with payload keys in lexical order.
func (i Instruction) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("instruction %s field %q: %w", i.ID, key, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := write("id", i.ID); err != nil {
		return nil, err
	}
	if err := write("widget", i.Widget); err != nil {
		return nil, err
	}
	if err := write("action", i.Action); err != nil {
		return nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(i.payload)) {
		if err := write(k, i.payload[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is the inverse used by Go clients. Payload values come back
// as generic JSON values; "child" is decoded into an ids.ID.
func (i *Instruction) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Instruction
	for k, v := range raw {
		var err error
		switch k {
		case "id":
			err = json.Unmarshal(v, &out.ID)
		case "widget":
			err = json.Unmarshal(v, &out.Widget)
		case "action":
			err = json.Unmarshal(v, &out.Action)
		case "child":
			var child ids.ID
			err = json.Unmarshal(v, &child)
			out.setField(k, child)
		default:
			var value any
			err = json.Unmarshal(v, &value)
			out.setField(k, value)
		}
		if err != nil {
			return fmt.Errorf("instruction field %q: %w", k, err)
		}
	}

	*i = out
	return nil
}

func (i *Instruction) setField(k string, v any) {
	if i.payload == nil {
		i.payload = make(map[string]any)
	}
	i.payload[k] = v
}
