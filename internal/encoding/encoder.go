package encoding

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// JSONCodec is a JSON encoder/decoder that reuses scratch buffers across
// calls. Cached responses and ranking snapshots are marshaled on every
// cache miss, so the buffers are worth pooling.
type JSONCodec struct {
	buffers sync.Pool

	marshals   int64
	unmarshals int64
}

// NewJSONCodec creates a new pooled JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{
		buffers: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Marshal encodes v to JSON using a pooled buffer
func (c *JSONCodec) Marshal(v interface{}) ([]byte, error) {
	atomic.AddInt64(&c.marshals, 1)

	buf := c.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.buffers.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// json.Encoder appends a newline; callers expect bare JSON.
	data := buf.Bytes()
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Unmarshal decodes JSON data into v
func (c *JSONCodec) Unmarshal(data []byte, v interface{}) error {
	atomic.AddInt64(&c.unmarshals, 1)
	return json.Unmarshal(data, v)
}

// GetStats returns codec usage statistics
func (c *JSONCodec) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"marshals":   atomic.LoadInt64(&c.marshals),
		"unmarshals": atomic.LoadInt64(&c.unmarshals),
	}
}

// Global codec instance shared by the caching layers
var globalCodec = NewJSONCodec()

// MarshalJSON marshals data using the shared codec
func MarshalJSON(v interface{}) ([]byte, error) {
	return globalCodec.Marshal(v)
}

// UnmarshalJSON unmarshals data using the shared codec
func UnmarshalJSON(data []byte, v interface{}) error {
	return globalCodec.Unmarshal(data, v)
}

// CodecStats returns statistics for the shared codec
func CodecStats() map[string]interface{} {
	return globalCodec.GetStats()
}
