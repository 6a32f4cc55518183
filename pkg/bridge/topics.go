package bridge

const (
	TopicActions = "scopectl.actions"
	TopicInbound = "scopectl.inbound"
)

const (
	MetadataActionType = "action_type"
	MetadataGlobalType = "global_type"
)
