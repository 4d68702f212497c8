package projector

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/x"
)

func TestService_Apply(t *testing.T) {
	projector := New()
	payload := map[string]interface{}{
		"id":    "u-1",
		"email": "alice@example.com",
		"profile": map[string]interface{}{
			"name": "Alice",
			"address": map[string]interface{}{
				"city": "NYC",
				"zip":  "10001",
			},
		},
		"secret": "hidden",
	}

	t.Run("dot paths", func(t *testing.T) {
		actual, err := projector.Apply(payload, []string{"id", "profile.address.city"})
		assert.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"id": "u-1",
			"profile": map[string]interface{}{
				"address": map[string]interface{}{"city": "NYC"},
			},
		}, actual)
	})

	t.Run("wildcard child", func(t *testing.T) {
		actual, err := projector.Apply(payload, []string{"profile.address.*"})
		assert.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"profile": map[string]interface{}{
				"address": map[string]interface{}{"city": "NYC", "zip": "10001"},
			},
		}, actual)
	})

	t.Run("missing fields omitted", func(t *testing.T) {
		actual, err := projector.Apply(payload, []string{"id", "missing", "profile.missing"})
		assert.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"id": "u-1"}, actual)
	})

	t.Run("bare star passes through", func(t *testing.T) {
		actual, err := projector.Apply(payload, []string{"*"})
		assert.NoError(t, err)
		assert.Equal(t, payload, actual)
	})

	t.Run("empty fields pass through", func(t *testing.T) {
		actual, err := projector.Apply(payload, nil)
		assert.NoError(t, err)
		assert.Equal(t, payload, actual)
	})

	t.Run("arrays element-wise", func(t *testing.T) {
		list := []interface{}{
			map[string]interface{}{"id": "1", "secret": "x"},
			map[string]interface{}{"id": "2", "secret": "y"},
		}
		actual, err := projector.Apply(list, []string{"id"})
		assert.NoError(t, err)
		assert.Equal(t, []interface{}{
			map[string]interface{}{"id": "1"},
			map[string]interface{}{"id": "2"},
		}, actual)
	})

	t.Run("idempotent", func(t *testing.T) {
		fields := []string{"id", "profile.name"}
		once, err := projector.Apply(payload, fields)
		assert.NoError(t, err)
		twice, err := projector.Apply(once, fields)
		assert.NoError(t, err)
		assert.Equal(t, once, twice)
	})
}

func TestService_Resolve(t *testing.T) {
	projector := New()
	entry := &directory.Entry{
		Name:     "users",
		Endpoint: "http://users.local",
		ProjectionPresets: map[string][]string{
			"summary": {"id", "email"},
		},
	}

	t.Run("explicit preset wins", func(t *testing.T) {
		fields, err := projector.Resolve(&Projection{Preset: "summary"}, &Projection{Fields: []string{"id"}}, entry)
		assert.NoError(t, err)
		assert.Equal(t, []string{"id", "email"}, fields)
	})

	t.Run("explicit fields win over client default", func(t *testing.T) {
		fields, err := projector.Resolve(&Projection{Fields: []string{"email"}}, &Projection{Fields: []string{"id"}}, entry)
		assert.NoError(t, err)
		assert.Equal(t, []string{"email"}, fields)
	})

	t.Run("client default applies", func(t *testing.T) {
		fields, err := projector.Resolve(nil, &Projection{Fields: []string{"id"}}, entry)
		assert.NoError(t, err)
		assert.Equal(t, []string{"id"}, fields)
	})

	t.Run("no projection means passthrough", func(t *testing.T) {
		fields, err := projector.Resolve(nil, nil, entry)
		assert.NoError(t, err)
		assert.Nil(t, fields)
	})

	t.Run("unknown preset fails", func(t *testing.T) {
		_, err := projector.Resolve(&Projection{Preset: "full"}, nil, entry)
		assert.Error(t, err)
	})
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

func TestService_Validate(t *testing.T) {
	projector := New()

	t.Run("schema map", func(t *testing.T) {
		entry := &directory.Entry{
			Name:     "orders",
			Endpoint: "http://orders.local",
			ResponseSchema: map[string]interface{}{
				"id": "string",
				"customer": map[string]interface{}{
					"name": "string",
				},
			},
		}
		assert.NoError(t, projector.Validate([]string{"id", "customer.name", "customer", "customer.*"}, entry))

		err := projector.Validate([]string{"id", "total"}, entry)
		assert.Error(t, err)
		var projErr *Error
		assert.ErrorAs(t, err, &projErr)
		assert.Equal(t, []string{"total"}, projErr.Fields)
	})

	t.Run("go contract type", func(t *testing.T) {
		entry := &directory.Entry{
			Name:         "users",
			Endpoint:     "http://users.local",
			ResponseType: x.NewType(reflect.TypeOf(userResponse{})),
		}
		assert.NoError(t, projector.Validate([]string{"id", "profile.name"}, entry))
		assert.Error(t, projector.Validate([]string{"password"}, entry))
	})

	t.Run("no declared shape accepts anything", func(t *testing.T) {
		entry := &directory.Entry{Name: "legacy", Endpoint: "http://legacy.local"}
		assert.NoError(t, projector.Validate([]string{"anything.goes"}, entry))
	})
}
