package roomcast

import "encoding/json"

// Encode serializes a payload value to the text carried in the data line of
// a frame. Any total function from values to text satisfies the contract as
// long as the consumer side uses a matching decoder.
type Encode func(v any) (string, error)

// Decode is the inverse of Encode. It is not used by the server core itself
// and is provided so applications can share a codec pair with their stream
// consumers.
type Decode func(text string) (any, error)

// DefaultEncode is the process wide payload encoder used by rooms created
// without an explicit encoder. It marshals values to JSON.
var DefaultEncode Encode = func(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DefaultDecode is the counterpart of DefaultEncode.
var DefaultDecode Decode = func(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}
