package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONB(t *testing.T) {
	in := JSONB[map[string]string]{V: map[string]string{"courseId": "c1"}}
	v, err := in.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"courseId":"c1"}`, string(v.([]byte)))

	var out JSONB[map[string]string]
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in.V, out.V)

	require.NoError(t, out.Scan(`{"a":"b"}`))
	assert.Equal(t, "b", out.V["a"])

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out.V)

	assert.Error(t, out.Scan(42))
	assert.Error(t, out.Scan([]byte("{")))
}
