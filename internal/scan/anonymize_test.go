package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIP(t *testing.T) {
	first := HashIP("1.2.3.4", "secret")
	second := HashIP("1.2.3.4", "secret")
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, *first, *second)
	assert.Len(t, *first, 64)
}

func TestHashIPDependsOnSecret(t *testing.T) {
	a := HashIP("1.2.3.4", "secret-a")
	b := HashIP("1.2.3.4", "secret-b")
	assert.NotEqual(t, *a, *b)

	c := HashIP("1.2.3.5", "secret-a")
	assert.NotEqual(t, *a, *c)
}

func TestHashIPMissing(t *testing.T) {
	assert.Nil(t, HashIP("", "secret"))
}
