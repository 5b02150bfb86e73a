package database

import (
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Handles carries the open storage connection. Exactly one of Mongo or Postgres is set, matching Driver.
type Handles struct {
	Driver   string
	Mongo    *mongo.Database
	Postgres *sqlx.DB
}

// UsesPostgres reports whether repositories should be built on Postgres.
func (h Handles) UsesPostgres() bool {
	return h.Driver == DriverPostgres && h.Postgres != nil
}
