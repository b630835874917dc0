// Command prune-sessions deletes expired OAuth login sessions.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

var (
	dsn    = flag.String("db", "", "Postgres DSN (defaults to DATABASE_URL)")
	schema = flag.String("schema", "", "schema holding oauth_sessions (defaults to DB_SCHEMA)")
	dryRun = flag.Bool("dry-run", false, "count expired sessions without deleting them")
)

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()
	flag.Parse()

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if *schema == "" {
		*schema = os.Getenv("DB_SCHEMA")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	table := tableName(*schema)
	now := time.Now().UTC()

	if *dryRun {
		var n int64
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE expires_at < $1", table)
		if err := db.QueryRowContext(ctx, q, now).Scan(&n); err != nil {
			log.Fatalf("count expired sessions: %v", err)
		}
		fmt.Printf("%d expired OAuth sessions in %s\n", n, table)
		return
	}

	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE expires_at < $1", table), now)
	if err != nil {
		log.Fatalf("delete expired sessions: %v", err)
	}
	n, _ := res.RowsAffected()
	fmt.Printf("✓ Deleted %d expired OAuth sessions from %s\n", n, table)
}

func tableName(schema string) string {
	if schema == "" {
		return pgx.Identifier{"oauth_sessions"}.Sanitize()
	}
	return pgx.Identifier{schema, "oauth_sessions"}.Sanitize()
}
