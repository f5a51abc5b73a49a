package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"air", "water"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["air","water"]`, v)
}

func TestStringListScan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["noise","soil"]`)))
	assert.Equal(t, StringList{"noise", "soil"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
	assert.NotNil(t, l)

	require.NoError(t, l.Scan("null"))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("{not json"))
}
