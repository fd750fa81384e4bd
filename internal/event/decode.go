package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload converts an event payload to T. In-process publishes carry the
// typed struct already; payloads replayed from the dead-letter file or read off
// the change feed arrive as decoded JSON maps or raw bytes.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	switch v := input.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return result, fmt.Errorf("nil %T payload", v)
		}
		return *v, nil
	case json.RawMessage:
		return result, json.Unmarshal(v, &result)
	case []byte:
		return result, json.Unmarshal(v, &result)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}
