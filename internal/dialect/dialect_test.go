package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlaceholder(t *testing.T) {
	assert.Equal(t, "@email", SQLServer.FormatPlaceholder("email", 1))
	assert.Equal(t, "@email", Generic.FormatPlaceholder("email", 3))
	assert.Equal(t, "$2", Postgres.FormatPlaceholder("email", 2))
	assert.Equal(t, "?", MySQL.FormatPlaceholder("email", 1))
	assert.Equal(t, "?", SQLite.FormatPlaceholder("email", 5))
}

func TestPlaceholderStyle_Named(t *testing.T) {
	assert.True(t, PlaceholderAt.Named())
	assert.True(t, PlaceholderColon.Named())
	assert.False(t, PlaceholderDollar.Named())
	assert.False(t, PlaceholderQuestion.Named())
}

func TestByName(t *testing.T) {
	d, ok := ByName("Postgres")
	require.True(t, ok)
	assert.Equal(t, PlaceholderDollar, d.Placeholder)

	// Driver names resolve too.
	d, ok = ByName("sqlite3")
	require.True(t, ok)
	assert.Equal(t, "Sqlite", d.Name)

	_, ok = ByName("oracle")
	assert.False(t, ok)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "[order]", SQLServer.Quote("order"))
	assert.Equal(t, "`order`", MySQL.Quote("order"))
	assert.Equal(t, `"order"`, Postgres.Quote("order"))
}
