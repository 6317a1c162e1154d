package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/eql"
	"github.com/ratanachh/eql/internal/functions"
	"github.com/ratanachh/eql/internal/metadata"
	"github.com/ratanachh/eql/internal/runner"
	"github.com/ratanachh/eql/internal/session"
	"github.com/ratanachh/eql/internal/translator"
)

// Handler manages WebSocket connections for the playground.
type Handler struct {
	sessions  *session.Manager
	lookup    metadata.Lookup
	functions *functions.Registry
	runner    *runner.Runner // nil when no database is attached
}

// NewHandler creates a WebSocket handler with all dependencies. The
// runner may be nil; "execute" then degrades to compile-only.
func NewHandler(sessions *session.Manager, lk metadata.Lookup, reg *functions.Registry, run *runner.Runner) *Handler {
	return &Handler{sessions: sessions, lookup: lk, functions: reg, runner: run}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("playground: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Create()
	defer h.sessions.Remove(sess.ID)
	ctx := r.Context()

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID, Dialect: sess.Dialect},
	})

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("playground: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}

		switch msg.Type {
		case "compile":
			h.handleCompile(ctx, conn, sess, msg, false)
		case "execute":
			h.handleCompile(ctx, conn, sess, msg, true)
		case "set_dialect":
			h.handleSetDialect(ctx, conn, sess, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, ErrorData{
				Code:    "unknown_type",
				Message: fmt.Sprintf("unknown message type: %s", msg.Type),
			})
		}
	}
}

func (h *Handler) handleCompile(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage, execute bool) {
	start := time.Now()

	var data CompileData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid compile data"})
		return
	}
	if data.Query == "" {
		h.sendError(ctx, conn, msg.ID, ErrorData{Code: "empty_query", Message: "empty query"})
		return
	}
	sess.AddHistory(data.Query)

	dialectName := data.Dialect
	if dialectName == "" {
		dialectName = sess.Dialect
	}
	d, ok := dialect.ByName(dialectName)
	if !ok {
		h.sendError(ctx, conn, msg.ID, ErrorData{
			Code:    "unknown_dialect",
			Message: fmt.Sprintf("unknown dialect: %s", dialectName),
		})
		return
	}

	q, err := eql.ParseQuery(data.Query)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, ClassifyError(err))
		return
	}

	res, err := translator.New(d, h.functions, h.lookup).Translate(q, data.Params)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, ClassifyError(err))
		return
	}

	params := make([]Param, 0, res.Params.Len())
	for _, name := range res.Params.Names() {
		v, _ := res.Params.Get(name)
		params = append(params, Param{Name: name, Value: v})
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "sql",
		RequestID: msg.ID,
		Data:      SQLData{SQL: res.SQL, Dialect: d.Name, Params: params},
	})

	if !execute || h.runner == nil {
		return
	}

	// Argument shape must follow the dialect the query was compiled
	// for, which a per-message override may have changed.
	run := h.runner.WithDialect(d)

	switch q.(type) {
	case *eql.SelectQuery:
		rows, cols, err := run.Query(ctx, res)
		if err != nil {
			h.sendError(ctx, conn, msg.ID, ErrorData{Code: "exec_error", Message: err.Error()})
			return
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = r
		}
		h.send(ctx, conn, ServerMessage{
			Type:      "rows",
			RequestID: msg.ID,
			Data:      RowsData{Columns: cols, Rows: out},
		})
		h.send(ctx, conn, ServerMessage{
			Type:      "done",
			RequestID: msg.ID,
			Data:      DoneData{Elapsed: time.Since(start).String()},
		})
	default:
		affected, err := run.Exec(ctx, res)
		if err != nil {
			h.sendError(ctx, conn, msg.ID, ErrorData{Code: "exec_error", Message: err.Error()})
			return
		}
		h.send(ctx, conn, ServerMessage{
			Type:      "done",
			RequestID: msg.ID,
			Data:      DoneData{RowsAffected: affected, Elapsed: time.Since(start).String()},
		})
	}
}

func (h *Handler) handleSetDialect(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data DialectData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid dialect data"})
		return
	}
	d, ok := dialect.ByName(data.Dialect)
	if !ok {
		h.sendError(ctx, conn, msg.ID, ErrorData{
			Code:    "unknown_dialect",
			Message: fmt.Sprintf("unknown dialect: %s", data.Dialect),
		})
		return
	}
	sess.SetDialect(d.Name)
	h.send(ctx, conn, ServerMessage{
		Type:      "session",
		RequestID: msg.ID,
		Data:      SessionData{SessionID: sess.ID, Dialect: sess.Dialect},
	})
}

// ClassifyError maps engine errors to protocol error payloads with a
// stable code per error family.
func ClassifyError(err error) ErrorData {
	var lexErr *eql.LexicalError
	if errors.As(err, &lexErr) {
		return ErrorData{Code: "lex_error", Message: lexErr.Error(), Line: lexErr.Line, Col: lexErr.Col}
	}
	var synErr *eql.SyntaxError
	if errors.As(err, &synErr) {
		return ErrorData{Code: "syntax_error", Message: synErr.Error(), Line: synErr.Line, Col: synErr.Col}
	}
	var trErr *translator.TranslationError
	if errors.As(err, &trErr) {
		return ErrorData{Code: "translation_error", Message: trErr.Error()}
	}
	return ErrorData{Code: "internal_error", Message: err.Error()}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("playground: write error: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID string, data ErrorData) {
	h.send(ctx, conn, ServerMessage{Type: "error", RequestID: requestID, Data: data})
}
