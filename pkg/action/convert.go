package action

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// FromMap converts a loosely typed object (a decoded JSON value or a script
// object) into an Action. Keys other than type, globalType and meta are
// collected into the payload unless an explicit payload key is present.
func FromMap(m map[string]any) (Action, bool) {
	typ, ok := m["type"].(string)
	if !ok || typ == "" {
		return Action{}, false
	}
	a := Action{Type: typ}
	if gt, ok := m["globalType"].(string); ok {
		a.GlobalType = gt
	}
	if meta, ok := m["meta"].(map[string]any); ok {
		a.Meta = meta
	}
	if p, ok := m["payload"]; ok {
		a.Payload = p
		return a, true
	}
	rest := map[string]any{}
	for k, v := range m {
		switch k {
		case "type", "globalType", "meta":
			continue
		}
		rest[k] = v
	}
	if len(rest) > 0 {
		a.Payload = rest
	}
	return a, true
}

func (a Action) ToMap() map[string]any {
	m := map[string]any{"type": a.Type}
	if a.GlobalType != "" {
		m["globalType"] = a.GlobalType
	}
	if a.Meta != nil {
		m["meta"] = a.Meta
	}
	if a.Payload != nil {
		m["payload"] = a.Payload
	}
	return m
}

func Decode(b []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(b, &a); err != nil {
		return Action{}, errors.Wrap(err, "parse action json")
	}
	if a.Type == "" {
		return Action{}, errors.New("action has no type")
	}
	return a, nil
}

func Encode(a Action) ([]byte, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal action %s", a.Type)
	}
	return b, nil
}
