package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/functions"
	"github.com/ratanachh/eql/internal/metadata"
)

func testConfig() Config {
	r := metadata.NewRegistry()
	r.Register(&metadata.EntityMeta{
		Name:  "User",
		Table: "users",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":   {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Name": {Name: "Name", Column: "name", Type: metadata.TypeString},
		},
		PropertyOrder: []string{"Id", "Name"},
	})
	return Config{Registry: r, Functions: functions.New(), Default: dialect.Generic}
}

func postCompile(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	compileHandler(testConfig())(rec, req)
	return rec
}

func TestCompileHandler_Success(t *testing.T) {
	rec := postCompile(t, `{"query": "SELECT u.Name FROM User u WHERE u.Id = :id", "params": {"id": 3}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SELECT name FROM users WHERE id = @id", resp.SQL)
	assert.Equal(t, "Generic", resp.Dialect)
	require.Len(t, resp.Params, 1)
	assert.Equal(t, "id", resp.Params[0].Name)
}

func TestCompileHandler_DialectOverride(t *testing.T) {
	rec := postCompile(t, `{"query": "SELECT u.Name FROM User u WHERE u.Id = :id", "dialect": "Postgres"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.SQL, "$1")
}

func TestCompileHandler_SyntaxError(t *testing.T) {
	rec := postCompile(t, `{"query": "SELECT FROM User u"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "syntax_error")
}

func TestCompileHandler_TranslationError(t *testing.T) {
	rec := postCompile(t, `{"query": "SELECT x.Id FROM Usr x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "translation_error")
}

func TestCompileHandler_UnknownDialect(t *testing.T) {
	rec := postCompile(t, `{"query": "SELECT u.Id FROM User u", "dialect": "oracle"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_dialect")
}

func TestCompileHandler_EmptyBody(t *testing.T) {
	rec := postCompile(t, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_query")
}
