package relevance

import (
	"encoding/json"

	"github.com/nhle/activity-sync/internal/model"
)

// Decode parses a push payload. The payload must be a JSON object with a
// string title; anything else is reported as not ok and should be dropped.
// A missing or non-string message decodes as empty. Unknown fields are
// ignored.
func Decode(payload []byte) (model.InboundEvent, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return model.InboundEvent{}, false
	}

	var event model.InboundEvent
	titleRaw, ok := raw["title"]
	if !ok || json.Unmarshal(titleRaw, &event.Title) != nil {
		return model.InboundEvent{}, false
	}
	if string(titleRaw) == "null" {
		return model.InboundEvent{}, false
	}

	if msgRaw, ok := raw["message"]; ok {
		var msg string
		if json.Unmarshal(msgRaw, &msg) == nil {
			event.Message = msg
		}
	}

	return event, true
}
