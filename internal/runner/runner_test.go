package runner

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/metadata"
	"github.com/ratanachh/eql/internal/translator"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, name, age) VALUES (1, 'Alice', 34), (2, 'Bob', 19), (3, 'Carol', 28)`)
	require.NoError(t, err)
	return db
}

func userRegistry() *metadata.Registry {
	r := metadata.NewRegistry()
	r.Register(&metadata.EntityMeta{
		Name:  "User",
		Table: "users",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":   {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Name": {Name: "Name", Column: "name", Type: metadata.TypeString},
			"Age":  {Name: "Age", Column: "age", Type: metadata.TypeInt},
		},
		PropertyOrder: []string{"Id", "Name", "Age"},
	})
	return r
}

func compile(t *testing.T, input string, bindings map[string]any) *translator.Result {
	t.Helper()
	res, err := translator.Compile(input, dialect.SQLite, userRegistry(), bindings)
	require.NoError(t, err)
	return res
}

func TestRunner_Query(t *testing.T) {
	db := openDB(t)
	run := New(db, dialect.SQLite)

	res := compile(t, "SELECT u.Name FROM User u WHERE u.Age > :min ORDER BY u.Name", map[string]any{"min": 20})
	rows, cols, err := run.Query(context.Background(), res)
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["name"])
	assert.Equal(t, "Carol", rows[1]["name"])
}

func TestRunner_QueryRepeatedParam(t *testing.T) {
	db := openDB(t)
	run := New(db, dialect.SQLite)

	// With ? placeholders a repeated name expands to one argument per
	// occurrence.
	res := compile(t, "SELECT u.Id FROM User u WHERE u.Age = :v OR u.Id = :v", map[string]any{"v": 19})
	rows, _, err := run.Query(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0]["id"])
}

func TestRunner_QueryCorrelatedSubquery(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE customers (id INTEGER PRIMARY KEY, email TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL, customer_id INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO customers (id, email) VALUES (1, 'low'), (50, 'high')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders (id, total, customer_id) VALUES (100, 60, 50)`)
	require.NoError(t, err)

	reg := metadata.NewRegistry()
	reg.Register(&metadata.EntityMeta{
		Name:  "Customer",
		Table: "customers",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":    {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Email": {Name: "Email", Column: "email", Type: metadata.TypeString},
		},
		PropertyOrder: []string{"Id", "Email"},
	})
	reg.Register(&metadata.EntityMeta{
		Name:  "Order",
		Table: "orders",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":         {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Total":      {Name: "Total", Column: "total", Type: metadata.TypeDecimal},
			"CustomerId": {Name: "CustomerId", Column: "customer_id", Type: metadata.TypeInt},
		},
		PropertyOrder: []string{"Id", "Total", "CustomerId"},
	})

	// The c.Id inside the subquery is a correlated reference; only the
	// one order row with total above the outer customer's id matches.
	res, err := translator.Compile(
		"SELECT c.Email FROM Customer c WHERE c.Id IN (SELECT o.CustomerId FROM Order o WHERE o.Total > c.Id)",
		dialect.SQLite, reg, nil)
	require.NoError(t, err)

	run := New(db, dialect.SQLite)
	rows, _, err := run.Query(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "high", rows[0]["email"])
}

func TestRunner_Exec(t *testing.T) {
	db := openDB(t)
	run := New(db, dialect.SQLite)

	res := compile(t, "UPDATE User u SET u.Name = :n WHERE u.Id = :id", map[string]any{"n": "Alicia", "id": 1})
	affected, err := run.Exec(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM users WHERE id = 1").Scan(&name))
	assert.Equal(t, "Alicia", name)
}

func TestRunner_ExecDelete(t *testing.T) {
	db := openDB(t)
	run := New(db, dialect.SQLite)

	res := compile(t, "DELETE FROM User u WHERE u.Age < :max", map[string]any{"max": 30})
	affected, err := run.Exec(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestRunner_ArgsNamed(t *testing.T) {
	run := New(nil, dialect.Generic)
	ps := translator.NewParamSet()
	ps.Add("a", 1)
	ps.Add("b", 2)

	args := run.Args(ps)
	require.Len(t, args, 2)
	named, ok := args[0].(sql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "a", named.Name)
	assert.Equal(t, 1, named.Value)
}

func TestRunner_WithDialect(t *testing.T) {
	base := New(nil, dialect.SQLite)
	ps := translator.NewParamSet()
	ps.Add("a", 1)
	ps.Add("b", 2)
	ps.Add("a", 1)

	// The sqlite runner expands per occurrence; a query compiled with
	// named placeholders needs sql.Named args from the same handle.
	assert.Equal(t, []any{1, 2, 1}, base.Args(ps))

	named := base.WithDialect(dialect.SQLServer)
	args := named.Args(ps)
	require.Len(t, args, 2)
	arg, ok := args[0].(sql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "a", arg.Name)

	// Same dialect returns the runner unchanged.
	assert.Same(t, base, base.WithDialect(dialect.SQLite))
}

func TestRunner_ArgsPositional(t *testing.T) {
	run := New(nil, dialect.Postgres)
	ps := translator.NewParamSet()
	ps.Add("a", 1)
	ps.Add("a", 1)
	ps.Add("b", 2)

	// $n dialects reuse the ordinal, so one value per distinct name.
	assert.Equal(t, []any{1, 2}, run.Args(ps))
}
