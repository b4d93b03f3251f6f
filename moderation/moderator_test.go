package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"price-pact/errors"
)

func newFilter(t *testing.T, words ...string) NameFilter {
	t.Helper()
	f, err := NewNameFilter(words, '*', 32)
	require.NoError(t, err)
	return f
}

func TestNameFilter_Clean_PassesHarmlessNames(t *testing.T) {
	req := require.New(t)
	f := newFilter(t, "scam", "fraud")

	got, err := f.Clean("Honest Buyer")
	req.NoError(err)
	req.Equal("Honest Buyer", got)
}

func TestNameFilter_Clean_TrimsWhitespace(t *testing.T) {
	req := require.New(t)
	f := newFilter(t, "scam")

	got, err := f.Clean("  Alice  ")
	req.NoError(err)
	req.Equal("Alice", got)
}

func TestNameFilter_Clean_RejectsEmptyAndOversized(t *testing.T) {
	req := require.New(t)
	f := newFilter(t, "scam")

	_, err := f.Clean("   ")
	req.ErrorIs(err, errors.ErrNameRejected)

	_, err = f.Clean(strings.Repeat("a", 33))
	req.ErrorIs(err, errors.ErrNameRejected)
}

func TestNameFilter_Clean_CensorsInPlace(t *testing.T) {
	req := require.New(t)
	f := newFilter(t, "scam")

	got, err := f.Clean("total scam artist")
	req.NoError(err)
	req.Equal("total **** artist", got)
}

func TestNameFilter_Clean_CatchesLeetAndCase(t *testing.T) {
	req := require.New(t)
	f := newFilter(t, "scam")

	got, err := f.Clean("SC4M corp")
	req.NoError(err)
	req.Equal("**** corp", got)
}

func TestNameFilter_Clean_CatchesPunctuationPadding(t *testing.T) {
	req := require.New(t)
	f := newFilter(t, "scam")

	got, err := f.Clean("s.c.a.m inc")
	req.NoError(err)
	req.Equal("******* inc", got)
}

func TestNameFilter_EmptyWordList_KeepsHygieneOnly(t *testing.T) {
	req := require.New(t)
	f := newFilter(t)

	got, err := f.Clean("scam")
	req.NoError(err)
	req.Equal("scam", got)

	_, err = f.Clean("")
	req.ErrorIs(err, errors.ErrNameRejected)
}
