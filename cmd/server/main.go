package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/functions"
	"github.com/ratanachh/eql/internal/metadata"
	"github.com/ratanachh/eql/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := loadOntology()
	if err != nil {
		log.Fatalf("loading ontology: %v", err)
	}

	d := dialect.SQLite
	if name := os.Getenv("EQL_DIALECT"); name != "" {
		var ok bool
		if d, ok = dialect.ByName(name); !ok {
			log.Fatalf("unknown dialect: %s", name)
		}
	}

	var db *sql.DB
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		db.SetMaxOpenConns(1)
		defer db.Close()

		// Enable foreign keys explicitly — required for SQLite.
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			log.Fatalf("enabling foreign keys: %v", err)
		}
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	if err := server.Run(ctx, server.Config{
		Port:      port,
		Registry:  registry,
		Functions: functions.New(),
		Default:   d,
		DB:        db,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// loadOntology reads the CUE ontology named by EQL_ONTOLOGY, falling
// back to a small built-in demo schema so the playground works out of
// the box.
func loadOntology() (*metadata.Registry, error) {
	if path := os.Getenv("EQL_ONTOLOGY"); path != "" {
		return metadata.LoadFile(path)
	}
	return demoRegistry(), nil
}

func demoRegistry() *metadata.Registry {
	r := metadata.NewRegistry()
	r.Register(&metadata.EntityMeta{
		Name:  "User",
		Table: "users",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":    {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Name":  {Name: "Name", Column: "name", Type: metadata.TypeString},
			"Email": {Name: "Email", Column: "email", Type: metadata.TypeString},
		},
		PropertyOrder: []string{"Id", "Name", "Email"},
	})
	r.Register(&metadata.EntityMeta{
		Name:  "Customer",
		Table: "customers",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":    {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Name":  {Name: "Name", Column: "name", Type: metadata.TypeString},
			"Email": {Name: "Email", Column: "email", Type: metadata.TypeString},
		},
		PropertyOrder: []string{"Id", "Name", "Email"},
	})
	r.Register(&metadata.EntityMeta{
		Name:  "Order",
		Table: "orders",
		Properties: map[string]*metadata.PropertyMeta{
			"Id":     {Name: "Id", Column: "id", Type: metadata.TypeInt},
			"Total":  {Name: "Total", Column: "total", Type: metadata.TypeDecimal},
			"Placed": {Name: "Placed", Column: "placed_at", Type: metadata.TypeTime},
		},
		Relationships: map[string]*metadata.RelationshipMeta{
			"Customer": {Name: "Customer", Target: "Customer", Column: "customer_id", RefColumn: "id"},
		},
		PropertyOrder: []string{"Id", "Total", "Placed"},
	})
	return r
}
