package wire

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/eql"
	"github.com/ratanachh/eql/internal/functions"
	"github.com/ratanachh/eql/internal/metadata"
	"github.com/ratanachh/eql/internal/runner"
	"github.com/ratanachh/eql/internal/session"
	"github.com/ratanachh/eql/internal/translator"
)

func TestClassifyError_Lexical(t *testing.T) {
	_, err := eql.ParseQuery("SELECT 'oops")
	require.Error(t, err)

	data := ClassifyError(err)
	assert.Equal(t, "lex_error", data.Code)
	assert.Equal(t, 1, data.Line)
	assert.NotZero(t, data.Col)
}

func TestClassifyError_Syntax(t *testing.T) {
	_, err := eql.ParseQuery("SELECT FROM User u")
	require.Error(t, err)

	data := ClassifyError(err)
	assert.Equal(t, "syntax_error", data.Code)
	assert.Equal(t, 1, data.Line)
	assert.Equal(t, 8, data.Col)
}

func TestClassifyError_Translation(t *testing.T) {
	err := &translator.TranslationError{Kind: translator.KindEntity, Name: "Usr"}
	data := ClassifyError(err)
	assert.Equal(t, "translation_error", data.Code)
	assert.Contains(t, data.Message, "Usr")
}

func TestClassifyError_Unknown(t *testing.T) {
	data := ClassifyError(errors.New("boom"))
	assert.Equal(t, "internal_error", data.Code)
	assert.Equal(t, "boom", data.Message)
}

func TestHandler_ExecuteWithDialectOverride(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, name) VALUES (1, 'Alice'), (2, 'Bob')`)
	require.NoError(t, err)

	reg := metadata.NewRegistry()
	reg.Register(&metadata.EntityMeta{
		Name:  "User",
		Table: "users",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":   {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Name": {Name: "Name", Column: "name", Type: metadata.TypeString},
		},
		PropertyOrder: []string{"Id", "Name"},
	})

	h := NewHandler(
		session.NewManager(dialect.SQLite, time.Hour, time.Hour),
		reg,
		functions.New(),
		runner.New(db, dialect.SQLite),
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var hello ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &hello))
	require.Equal(t, "session", hello.Type)

	// Overriding the dialect compiles with named placeholders; the
	// arguments must follow that shape, not the server default's.
	payload, err := json.Marshal(CompileData{
		Query:   "SELECT u.Name FROM User u WHERE u.Id = :id",
		Dialect: "SqlServer",
		Params:  map[string]any{"id": 2},
	})
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: "execute", ID: "r1", Data: payload}))

	var sqlMsg ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &sqlMsg))
	require.Equal(t, "sql", sqlMsg.Type)
	assert.Contains(t, sqlMsg.Data.(map[string]any)["sql"], "@id")

	var rowsMsg ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &rowsMsg))
	require.Equal(t, "rows", rowsMsg.Type, "expected rows, got %v", rowsMsg.Data)
	rows := rowsMsg.Data.(map[string]any)["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].(map[string]any)["name"])
}
