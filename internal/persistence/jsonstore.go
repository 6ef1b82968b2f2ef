package persistence

import "encoding/json"

// Encode renders a StateRecordV1 to its canonical wire form: indented
// JSON with the field order fixed by the struct declaration.
func Encode(r StateRecordV1) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Decode parses a StateRecordV1 previously produced by Encode.
func Decode(data []byte) (StateRecordV1, error) {
	var r StateRecordV1
	if err := json.Unmarshal(data, &r); err != nil {
		return StateRecordV1{}, err
	}
	return r, nil
}
