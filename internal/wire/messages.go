// Package wire defines the WebSocket protocol for the EQL playground.
package wire

import "encoding/json"

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "compile", "execute", "set_dialect", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// CompileData is the payload for "compile" and "execute" messages.
type CompileData struct {
	Query   string         `json:"query"`
	Dialect string         `json:"dialect,omitempty"` // overrides the session dialect
	Params  map[string]any `json:"params,omitempty"`
}

// DialectData is the payload for "set_dialect" messages.
type DialectData struct {
	Dialect string `json:"dialect"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "sql", "rows", "done", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// Param is one named parameter of a compiled query, in placeholder order.
type Param struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// SQLData carries a compiled query.
type SQLData struct {
	SQL     string  `json:"sql"`
	Dialect string  `json:"dialect"`
	Params  []Param `json:"params"`
}

// RowsData carries the result rows of an executed SELECT.
type RowsData struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// DoneData signals completion of an execution.
type DoneData struct {
	RowsAffected int64  `json:"rows_affected,omitempty"`
	Elapsed      string `json:"elapsed"`
}

// ErrorData carries a structured error message. Line and Col are set for
// lexical and syntax errors.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
	Dialect   string `json:"dialect"`
}
