// Command seed provisions the initial admin account (and the collection
// indexes that depend on it). Intended to run once against a fresh database:
//
//	SEED_ADMIN_EMAIL=admin@petloc.com SEED_ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/petloc/petloc/internal/config"
	"github.com/petloc/petloc/internal/database"
	"github.com/petloc/petloc/internal/models"
	"github.com/petloc/petloc/internal/users"
)

func main() {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	nome := os.Getenv("SEED_ADMIN_NOME")
	if nome == "" {
		nome = "Administrador"
	}
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		log.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	col := client.Database(cfg.MongoDB.Database).Collection("users")
	svc := users.NewService(users.NewMongoUserRepository(col))

	u, err := svc.CreateAccount(ctx, nome, email, password)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		existing, lookupErr := svc.GetByEmail(ctx, email)
		if lookupErr != nil {
			log.Fatalf("account exists but cannot be loaded: %v", lookupErr)
		}
		u = existing
		log.Printf("account %s already exists, ensuring admin role", email)
	case err != nil:
		log.Fatalf("cannot create admin account: %v", err)
	}

	if err := svc.SetTipo(ctx, u.ID, models.TipoAdmin); err != nil {
		log.Fatalf("cannot promote %s to admin: %v", email, err)
	}
	log.Printf("admin account ready: %s (%s)", email, u.ID)
}
