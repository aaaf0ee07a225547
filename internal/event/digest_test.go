package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestStableAcrossCalls(t *testing.T) {
	p := AgentFoundSimilarityPayload{
		FromType: "challenge", FromID: "c-1",
		ToType: "challenge", ToID: "c-2",
		IdeaID: "i-1", OtherIdeaID: "i-2",
		Score: 0.82,
	}

	d1, err := Digest(p)
	require.NoError(t, err)
	d2, err := Digest(p)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
}

func TestDigestDiffersByField(t *testing.T) {
	a := IdeaCreatedPayload{IdeaID: "i-1", Title: "Self-serve billing", AuthorID: "u-1"}
	b := IdeaCreatedPayload{IdeaID: "i-1", Title: "Self-serve billing", AuthorID: "u-2"}

	assert.NotEqual(t, MustDigest(a), MustDigest(b))
}

func TestDigestDiffersByEventName(t *testing.T) {
	// Same field values under different event names must not collide.
	created := SummaryCreatedPayload{SummaryID: "s-1", IdeaID: "i-1", Content: "pitch"}
	updated := SummaryUpdatedPayload{SummaryID: "s-1", IdeaID: "i-1", Content: "pitch"}

	assert.NotEqual(t, MustDigest(created), MustDigest(updated))
}

func TestDigestNormalizesUnicode(t *testing.T) {
	// NFC: precomposed é vs e + combining acute must digest identically.
	composed := IdeaCreatedPayload{IdeaID: "i-1", Title: "café", AuthorID: "u-1"}
	decomposed := IdeaCreatedPayload{IdeaID: "i-1", Title: "café", AuthorID: "u-1"}

	assert.Equal(t, MustDigest(composed), MustDigest(decomposed))
}

func TestMarshalCanonicalSortsKeysAndSkipsHTMLEscape(t *testing.T) {
	out, err := marshalCanonical(map[string]any{
		"b": "x < y",
		"a": int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":"x < y"}`, string(out))
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := marshalCanonical(map[string]any{"bad": nil})
	assert.Error(t, err)
}
