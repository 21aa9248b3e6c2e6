package raindrop

// Envelope is the normalized result of a raindrop call. Exactly one of the
// three shapes is populated: a parsed JSON body, a raw body plus transport
// status, or a local error code. Callers always receive an envelope, never
// a panic or a bare error.
type Envelope struct {
	Parsed  map[string]any
	Raw     string
	Status  int
	ErrCode string
	ErrMsg  string
}

func parsed(body map[string]any, status int) Envelope {
	return Envelope{Parsed: body, Status: status}
}

func raw(body string, status int) Envelope {
	return Envelope{Raw: body, Status: status}
}

func failure(code, msg string) Envelope {
	return Envelope{ErrCode: code, ErrMsg: msg}
}

// Failed reports whether the call never produced a provider response.
func (e Envelope) Failed() bool {
	return len(e.ErrCode) > 0
}

// Succeeded is the explicit success predicate for the provider: a parsed
// body that either carries ok==true or a result payload. Raw bodies and
// local errors never count as success.
func (e Envelope) Succeeded() bool {
	if e.Failed() || e.Parsed == nil {
		return false
	}

	if ok, isBool := e.Parsed["ok"].(bool); isBool && ok {
		return true
	}

	_, hasResult := e.Parsed["result"]

	return hasResult
}

// Payload renders the envelope as a JSON-ready body for callers that relay
// provider responses verbatim.
func (e Envelope) Payload() map[string]any {
	if e.Failed() {
		return map[string]any{
			"ok":      false,
			"error":   e.ErrCode,
			"message": e.ErrMsg,
		}
	}

	if e.Parsed != nil {
		return e.Parsed
	}

	return map[string]any{
		"raw":    e.Raw,
		"status": e.Status,
	}
}
