package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayload(t *testing.T) {
	context := map[string]interface{}{
		"orderId": "ord-1",
		"amount":  42.5,
		"user":    map[string]interface{}{"name": "alice"},
	}

	t.Run("whole string placeholder keeps type", func(t *testing.T) {
		assert.Equal(t, 42.5, Payload("${amount}", context))
		assert.Equal(t, map[string]interface{}{"name": "alice"}, Payload("${user}", context))
	})

	t.Run("embedded placeholder stringifies", func(t *testing.T) {
		assert.Equal(t, "order ord-1 total 42.5", Payload("order ${orderId} total ${amount}", context))
	})

	t.Run("unmatched placeholder kept verbatim", func(t *testing.T) {
		assert.Equal(t, "${missing}", Payload("${missing}", context))
		assert.Equal(t, "x ${missing} y", Payload("x ${missing} y", context))
	})

	t.Run("recurses into maps and slices", func(t *testing.T) {
		input := map[string]interface{}{
			"id":    "${orderId}",
			"items": []interface{}{"${amount}", "static"},
		}
		expected := map[string]interface{}{
			"id":    "ord-1",
			"items": []interface{}{42.5, "static"},
		}
		assert.Equal(t, expected, Payload(input, context))
	})

	t.Run("non string passthrough", func(t *testing.T) {
		assert.Equal(t, 7, Payload(7, context))
		assert.Nil(t, Payload(nil, context))
	})
}
