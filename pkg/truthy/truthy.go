package truthy

import "encoding/json"

// Is reports whether a boolean-like value received from a backend is true.
// The scan backend sends native booleans, the portal sends "true"/"false"
// strings and some legacy endpoints send 0/1, so every flag read goes
// through this single coercion. Anything unrecognized (including nil) is false.
func Is(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case json.Number:
		return t.String() == "1"
	}
	return false
}

// Flex is a boolean delivered as bool, number or string depending on the
// backend. It keeps the raw decoded value and exposes it only through Is.
type Flex struct {
	raw interface{}
}

func (f *Flex) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		// Leave the zero value (false) rather than failing the whole decode.
		return nil
	}
	f.raw = v
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Bool())
}

func (f Flex) Bool() bool {
	return Is(f.raw)
}
