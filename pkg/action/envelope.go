package action

// WrapGlobal builds the dispatch-global envelope around a. The routing
// middleware replaces the envelope with a before reducers see it.
func WrapGlobal(a Action) Action {
	return Action{
		Type:       TypeIgnoreLocal,
		GlobalType: GlobalTypeDispatchGlobal,
		Meta: map[string]any{
			MetaGlobalAction: a,
		},
	}
}

// GetGlobalState builds the get-global-state control request.
func GetGlobalState() Action {
	return Action{
		Type:       TypeIgnoreLocal,
		GlobalType: GlobalTypeGetState,
	}
}

// Unwrap extracts the action carried by a dispatch-global envelope.
func Unwrap(envelope Action) (Action, bool) {
	if envelope.GlobalType != GlobalTypeDispatchGlobal {
		return Action{}, false
	}
	v, ok := envelope.MetaValue(MetaGlobalAction)
	if !ok {
		return Action{}, false
	}
	switch inner := v.(type) {
	case Action:
		return inner, true
	case *Action:
		if inner == nil {
			return Action{}, false
		}
		return *inner, true
	case map[string]any:
		return FromMap(inner)
	}
	return Action{}, false
}
