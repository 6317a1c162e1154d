// Package dialect describes the target SQL flavors the translator can
// emit: placeholder convention, identifier quoting, and the name used to
// select function spellings in the registry.
package dialect

import (
	"fmt"

	entdialect "entgo.io/ent/dialect"
)

// PlaceholderStyle defines how bound parameters are formatted in the
// emitted SQL text.
type PlaceholderStyle int

const (
	// PlaceholderAt uses @name named parameters (SQL Server).
	PlaceholderAt PlaceholderStyle = iota
	// PlaceholderColon uses :name named parameters (Oracle-style drivers).
	PlaceholderColon
	// PlaceholderDollar uses $1, $2, ... positional parameters (PostgreSQL).
	PlaceholderDollar
	// PlaceholderQuestion uses ? positional parameters (MySQL, SQLite).
	PlaceholderQuestion
)

// Named reports whether the style carries the parameter name in the SQL
// text. Positional styles rely on argument order instead.
func (s PlaceholderStyle) Named() bool {
	return s == PlaceholderAt || s == PlaceholderColon
}

// Dialect identifies a target SQL flavor. The Name doubles as the key
// into the function registry's per-dialect spelling tables; Driver is
// the database/sql driver discriminator, matching the ent dialect names
// used by the surrounding system.
type Dialect struct {
	Name        string
	Driver      string
	Placeholder PlaceholderStyle
	QuoteOpen   rune
	QuoteClose  rune
}

// Predefined dialect descriptors.
var (
	SQLServer = Dialect{
		Name:        "SqlServer",
		Driver:      "sqlserver",
		Placeholder: PlaceholderAt,
		QuoteOpen:   '[',
		QuoteClose:  ']',
	}
	Postgres = Dialect{
		Name:        "Postgres",
		Driver:      entdialect.Postgres,
		Placeholder: PlaceholderDollar,
		QuoteOpen:   '"',
		QuoteClose:  '"',
	}
	MySQL = Dialect{
		Name:        "MySql",
		Driver:      entdialect.MySQL,
		Placeholder: PlaceholderQuestion,
		QuoteOpen:   '`',
		QuoteClose:  '`',
	}
	SQLite = Dialect{
		Name:        "Sqlite",
		Driver:      entdialect.SQLite,
		Placeholder: PlaceholderQuestion,
		QuoteOpen:   '"',
		QuoteClose:  '"',
	}
	Generic = Dialect{
		Name:        "Generic",
		Driver:      "generic",
		Placeholder: PlaceholderAt,
		QuoteOpen:   '"',
		QuoteClose:  '"',
	}
)

// byName indexes the predefined dialects case-sensitively by Name and
// by Driver, so both "Postgres" and "postgres" resolve.
var byName = func() map[string]Dialect {
	m := make(map[string]Dialect)
	for _, d := range []Dialect{SQLServer, Postgres, MySQL, SQLite, Generic} {
		m[d.Name] = d
		m[d.Driver] = d
	}
	return m
}()

// ByName resolves a dialect from its Name or Driver string.
func ByName(name string) (Dialect, bool) {
	d, ok := byName[name]
	return d, ok
}

// FormatPlaceholder formats the placeholder for the parameter with the
// given logical name and 1-based ordinal of first occurrence.
func (d Dialect) FormatPlaceholder(name string, ordinal int) string {
	switch d.Placeholder {
	case PlaceholderAt:
		return "@" + name
	case PlaceholderColon:
		return ":" + name
	case PlaceholderDollar:
		return fmt.Sprintf("$%d", ordinal)
	default:
		return "?"
	}
}

// Quote wraps an identifier in the dialect's quoting characters.
func (d Dialect) Quote(ident string) string {
	return string(d.QuoteOpen) + ident + string(d.QuoteClose)
}
