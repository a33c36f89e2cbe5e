package tools

import "encoding/json"

func parseParams(raw json.RawMessage, out any) *ProtocolError {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewProtocolError(ErrInvalidParameters, "invalid parameters: "+err.Error())
	}
	return nil
}

func marshalResult(v any) (json.RawMessage, *ProtocolError) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, NewProtocolError(ErrInternal, "failed to serialize result: "+err.Error())
	}
	return b, nil
}
