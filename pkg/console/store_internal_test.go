package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKVToken_DistinctTokensStayDistinct(t *testing.T) {
	t.Parallel()

	// Paths that only differ in escaped bytes must not fold together,
	// otherwise Clear on one namespace would purge the other.
	pairs := [][2]string{
		{"providers/42/services", "providers.42.services"},
		{"a/b", "a.b"},
		{"a=b", "a/b"},
		{"providers", "providers/"},
	}

	for _, pair := range pairs {
		assert.NotEqual(t, kvToken(pair[0]), kvToken(pair[1]),
			"tokens %q and %q collide after encoding", pair[0], pair[1])
	}
}

func TestKVToken_EscapesOutsideAlphabet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "providers", kvToken("providers"))
	assert.Equal(t, "a=2fb", kvToken("a/b"))
	assert.Equal(t, "a=2eb", kvToken("a.b"))
	assert.Equal(t, "a=3db", kvToken("a=b"))
}

func TestKVKey_NamespaceBoundaryIsUnambiguous(t *testing.T) {
	t.Parallel()

	// The namespace/key separator never appears inside an encoded
	// token, so prefix matching in Clear is exact.
	assert.Equal(t, "providers/types", kvKey("providers", "types"))
	assert.NotEqual(t, kvKey("a/b", "c"), kvKey("a", "b/c"))
}
