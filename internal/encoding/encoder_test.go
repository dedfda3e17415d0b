package encoding

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := NewJSONCodec()

	in := map[string]interface{}{"team": 254.0, "rating": 8.5}
	data, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	var out map[string]interface{}
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	stats := codec.GetStats()
	assert.Equal(t, int64(1), stats["marshals"])
	assert.Equal(t, int64(1), stats["unmarshals"])
}

func TestJSONCodecConcurrent(t *testing.T) {
	codec := NewJSONCodec()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			data, err := codec.Marshal(map[string]int{"n": n})
			assert.NoError(t, err)

			var out map[string]int
			assert.NoError(t, codec.Unmarshal(data, &out))
			assert.Equal(t, n, out["n"])
		}(i)
	}
	wg.Wait()
}

func TestJSONCodecMarshalError(t *testing.T) {
	codec := NewJSONCodec()
	_, err := codec.Marshal(make(chan int))
	assert.Error(t, err)
}
