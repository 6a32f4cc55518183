package action

// Reserved protocol values shared by scope containers, the routing middleware
// and user processes.
const (
	TypeRunProcess  = "@@LOCAL_REDUX_SAGA_RUN"
	TypeIgnoreLocal = "@@LOCAL_REDUX_SAGA"

	GlobalTypeGetState       = "@@LOCAL_REDUX_SAGA_GET_STATE"
	GlobalTypeDispatchGlobal = "@@LOCAL_REDUX_SAGA_DISPATCH_GLOBAL"

	MetaRunProcess   = "LOCAL_REDUX_SAGA"
	MetaGlobalAction = "GLOBAL_ACTION"
	MetaReply        = "LOCAL_REDUX_SAGA_REPLY"

	DefaultLocalPrefix = "@@LOCAL_REDUX/"
	Separator          = "->"
)

type Action struct {
	Type       string         `json:"type"`
	GlobalType string         `json:"globalType,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

// Dispatch sends an action down a middleware chain and returns whatever the
// chain returned.
type Dispatch func(a Action) any

func New(typ string, payload any) Action {
	return Action{Type: typ, Payload: payload}
}

// WithMeta returns a copy of a with key set in its metadata. The receiver's
// map is never mutated.
func (a Action) WithMeta(key string, value any) Action {
	meta := make(map[string]any, len(a.Meta)+1)
	for k, v := range a.Meta {
		meta[k] = v
	}
	meta[key] = value
	a.Meta = meta
	return a
}

func (a Action) MetaValue(key string) (any, bool) {
	if a.Meta == nil {
		return nil, false
	}
	v, ok := a.Meta[key]
	return v, ok
}

func (a Action) IsGlobalTagged() bool {
	return a.GlobalType != ""
}

// Kind is the closed set of shapes the routing middleware distinguishes.
type Kind int

const (
	KindPlain Kind = iota
	KindStartProcess
	KindGetState
	KindDispatchGlobal
)

func (k Kind) String() string {
	switch k {
	case KindStartProcess:
		return "start-process"
	case KindGetState:
		return "get-global-state"
	case KindDispatchGlobal:
		return "dispatch-global"
	default:
		return "plain"
	}
}

// Classify decodes the sentinel fields of a. Unknown globalType values are
// plain actions.
func Classify(a Action) Kind {
	if a.Type == TypeRunProcess {
		return KindStartProcess
	}
	switch a.GlobalType {
	case GlobalTypeGetState:
		return KindGetState
	case GlobalTypeDispatchGlobal:
		return KindDispatchGlobal
	}
	return KindPlain
}
