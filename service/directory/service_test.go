package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Resolve(t *testing.T) {
	srv := New()
	require.NoError(t, srv.Register(&Entry{Name: "billing", Version: "v1", Endpoint: "http://billing/v1", Status: StatusInactive}))
	require.NoError(t, srv.Register(&Entry{Name: "billing", Version: "v2", Endpoint: "http://billing/v2"}))

	entry, err := srv.Resolve("billing", "v1")
	require.NoError(t, err)
	assert.Equal(t, "http://billing/v1", entry.Endpoint)

	// empty version selects the first active one
	entry, err = srv.Resolve("billing", "")
	require.NoError(t, err)
	assert.Equal(t, "v2", entry.Version)

	_, err = srv.Resolve("billing", "v9")
	assert.Error(t, err)
	_, err = srv.Resolve("ghost", "")
	assert.Error(t, err)
}

func TestService_Register_Validation(t *testing.T) {
	srv := New()
	assert.Error(t, srv.Register(nil))
	assert.Error(t, srv.Register(&Entry{Version: "v1", Endpoint: "http://x"}))
	assert.Error(t, srv.Register(&Entry{Name: "billing", Version: "v1"}))
}

func TestService_Has(t *testing.T) {
	srv := New()
	assert.False(t, srv.Has("billing"))
	require.NoError(t, srv.Register(&Entry{Name: "billing", Endpoint: "http://billing"}))
	assert.True(t, srv.Has("billing"))
	assert.Len(t, srv.List(), 1)
}

func TestEntry_Preset(t *testing.T) {
	entry := &Entry{ProjectionPresets: map[string][]string{"summary": {"id", "status"}}}
	fields, ok := entry.Preset("summary")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "status"}, fields)
	_, ok = entry.Preset("missing")
	assert.False(t, ok)
}
