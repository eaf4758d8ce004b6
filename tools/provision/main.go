// Package main provisions users for the disclosure workflow service:
// it creates a user or rotates an existing user's credential and
// administrator flag, directly against the database. User bootstrap is
// deliberately kept out of the server process so no default credential
// ever ships with it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/keyharmony/keyharmony/internal/db"
	"github.com/keyharmony/keyharmony/internal/password"
	"github.com/keyharmony/keyharmony/internal/repository"
)

func main() {
	var (
		dsn      string
		username string
		plain    string
		admin    bool
	)

	flag.StringVar(&dsn, "d", os.Getenv("DATABASE_DSN"), "db address")
	flag.StringVar(&username, "user", "", "username to create or update")
	flag.StringVar(&plain, "password", "", "password to set")
	flag.BoolVar(&admin, "admin", false, "grant the administrator capability")
	flag.Parse()

	if dsn == "" || username == "" || plain == "" {
		log.Fatal("usage: provision -d <dsn> -user <name> -password <secret> [-admin]")
	}

	postgresDB, err := db.InitPostgres(dsn)
	if err != nil {
		log.Fatalf("cannot init database: %v", err)
	}
	defer postgresDB.Close()

	hash, err := password.Hash(plain)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	users := repository.NewPostgresUserRepository(postgresDB)
	id, err := users.Upsert(context.Background(), username, hash, admin)
	if err != nil {
		log.Fatalf("cannot provision user: %v", err)
	}

	fmt.Printf("provisioned user %q (id=%d, admin=%v)\n", username, id, admin)
}
