package localization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonpair/backend/internal/localization"
)

func TestLoadsBundledLocales(t *testing.T) {
	l, err := localization.NewLocalizer("locales")
	require.NoError(t, err)

	langs := l.Languages()
	assert.Contains(t, langs, "en")
	assert.Contains(t, langs, "si")
}

func TestGetStringFallback(t *testing.T) {
	l, err := localization.NewLocalizer("locales")
	require.NoError(t, err)

	// Known key resolves in both languages and they differ.
	en := l.GetString("en", "welcome")
	si := l.GetString("si", "welcome")
	assert.NotEqual(t, "welcome", en)
	assert.NotEqual(t, "welcome", si)
	assert.NotEqual(t, en, si)

	// Unknown language falls back to English.
	assert.Equal(t, en, l.GetString("xx", "welcome"))

	// Unknown key falls back to the key itself.
	assert.Equal(t, "no_such_key", l.GetString("en", "no_such_key"))
}

func TestGetStringfFormats(t *testing.T) {
	l, err := localization.NewLocalizer("locales")
	require.NoError(t, err)

	got := l.GetStringf("en", "spam_mute", 42)
	assert.Contains(t, got, "42")
}

func TestMissingDirectory(t *testing.T) {
	_, err := localization.NewLocalizer("no-such-dir")
	assert.Error(t, err)
}
