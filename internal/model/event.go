package model

// InboundEvent is a push event as delivered by the push channel. Fields
// other than Title and Message are ignored.
type InboundEvent struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ViewerContext identifies the viewer of the current session. Identity is
// usually an email address and is matched as a literal substring.
type ViewerContext struct {
	Identity string `json:"identity"`
}
