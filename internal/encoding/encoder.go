package encoding

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// JSONCodec marshals and unmarshals JSON through a pool of reusable
// buffers, keeping allocation churn down on the hot scoring path.
type JSONCodec struct {
	buffers sync.Pool

	marshals   int64
	unmarshals int64
	poolMisses int64
}

// NewJSONCodec creates a new codec with a warm buffer pool.
func NewJSONCodec() *JSONCodec {
	c := &JSONCodec{}
	c.buffers = sync.Pool{
		New: func() interface{} {
			atomic.AddInt64(&c.poolMisses, 1)
			return new(bytes.Buffer)
		},
	}
	return c
}

// Marshal encodes v to JSON using a pooled buffer.
func (c *JSONCodec) Marshal(v interface{}) ([]byte, error) {
	atomic.AddInt64(&c.marshals, 1)

	buf := c.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.buffers.Put(buf)

	encoder := json.NewEncoder(buf)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	// Encode appends a newline; strip it so output matches json.Marshal
	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	// The buffer is reused, so the caller gets a copy
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Unmarshal decodes JSON data into v.
func (c *JSONCodec) Unmarshal(data []byte, v interface{}) error {
	atomic.AddInt64(&c.unmarshals, 1)
	return json.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// GetStats returns codec usage statistics.
func (c *JSONCodec) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"marshals":    atomic.LoadInt64(&c.marshals),
		"unmarshals":  atomic.LoadInt64(&c.unmarshals),
		"pool_misses": atomic.LoadInt64(&c.poolMisses),
	}
}

var globalCodec = NewJSONCodec()

// MarshalJSON marshals data using the package-level codec.
func MarshalJSON(v interface{}) ([]byte, error) {
	return globalCodec.Marshal(v)
}

// UnmarshalJSON unmarshals data using the package-level codec.
func UnmarshalJSON(data []byte, v interface{}) error {
	return globalCodec.Unmarshal(data, v)
}

// GlobalStats returns statistics for the package-level codec.
func GlobalStats() map[string]interface{} {
	return globalCodec.GetStats()
}
