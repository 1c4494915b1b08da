package codec

import jsoniter "github.com/json-iterator/go"

// json is a drop-in replacement for encoding/json with better performance.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fast is a JSON codec backed by github.com/json-iterator/go. It produces the
// same bytes as the standard library but decodes large availability files
// noticeably faster.
type Fast struct{}

// Marshal encodes the value to JSON.
func (Fast) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (Fast) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("jsoniter").
func (Fast) Name() string { return "jsoniter" }
