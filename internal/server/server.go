// Package server assembles the HTTP API and the playground WebSocket
// endpoint and runs the server.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/eql"
	"github.com/ratanachh/eql/internal/functions"
	"github.com/ratanachh/eql/internal/metadata"
	"github.com/ratanachh/eql/internal/runner"
	"github.com/ratanachh/eql/internal/session"
	"github.com/ratanachh/eql/internal/translator"
	"github.com/ratanachh/eql/internal/wire"
)

// Config holds server configuration.
type Config struct {
	Port      int
	Registry  *metadata.Registry
	Functions *functions.Registry
	Default   dialect.Dialect
	DB        *sql.DB // optional; enables query execution
}

// compileRequest is the body of POST /v1/compile.
type compileRequest struct {
	Query   string         `json:"query"`
	Dialect string         `json:"dialect,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// compileResponse is the success body of POST /v1/compile.
type compileResponse struct {
	SQL     string       `json:"sql"`
	Dialect string       `json:"dialect"`
	Params  []wire.Param `json:"params"`
}

// Run starts the HTTP server with all routes registered.
func Run(ctx context.Context, cfg Config) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/v1/compile", compileHandler(cfg))

	r.Get("/v1/schema", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cfg.Registry.AllEntities())
	})

	r.Get("/v1/dialects", func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, 5)
		for _, d := range []dialect.Dialect{dialect.SQLServer, dialect.Postgres, dialect.MySQL, dialect.SQLite, dialect.Generic} {
			names = append(names, d.Name)
		}
		writeJSON(w, http.StatusOK, names)
	})

	// Playground: session manager (24 hr max, 30 min idle) plus the
	// WebSocket compile/execute loop.
	sessions := session.NewManager(cfg.Default, 24*time.Hour, 30*time.Minute)
	var run *runner.Runner
	if cfg.DB != nil {
		run = runner.New(cfg.DB, cfg.Default)
	}
	ws := wire.NewHandler(sessions, cfg.Registry, cfg.Functions, run)

	r.Route("/api/playground", func(r chi.Router) {
		r.Get("/ws", ws.ServeHTTP)
		r.Post("/session", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, sessions.Create())
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s (dialect %s)", addr, cfg.Default.Name)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// compileHandler translates a query without executing it. Engine errors
// map to 400 (lexical/syntax) or 422 (unresolvable names); anything else
// is a 500.
func compileHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, wire.ErrorData{Code: "invalid_body", Message: "invalid JSON body"})
			return
		}
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, wire.ErrorData{Code: "empty_query", Message: "empty query"})
			return
		}

		name := req.Dialect
		if name == "" {
			name = cfg.Default.Name
		}
		d, ok := dialect.ByName(name)
		if !ok {
			writeError(w, http.StatusBadRequest, wire.ErrorData{
				Code:    "unknown_dialect",
				Message: fmt.Sprintf("unknown dialect: %s", name),
			})
			return
		}

		q, err := eql.ParseQuery(req.Query)
		if err != nil {
			writeError(w, http.StatusBadRequest, wire.ClassifyError(err))
			return
		}
		res, err := translator.New(d, cfg.Functions, cfg.Registry).Translate(q, req.Params)
		if err != nil {
			data := wire.ClassifyError(err)
			status := http.StatusUnprocessableEntity
			if data.Code == "internal_error" {
				status = http.StatusInternalServerError
			}
			writeError(w, status, data)
			return
		}

		params := make([]wire.Param, 0, res.Params.Len())
		for _, pname := range res.Params.Names() {
			v, _ := res.Params.Get(pname)
			params = append(params, wire.Param{Name: pname, Value: v})
		}
		writeJSON(w, http.StatusOK, compileResponse{SQL: res.SQL, Dialect: d.Name, Params: params})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, data wire.ErrorData) {
	writeJSON(w, status, map[string]any{"error": data})
}
