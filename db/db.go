package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chunks (
    id         uuid PRIMARY KEY,
    title      text NOT NULL DEFAULT '',
    section    text NOT NULL DEFAULT '',
    source     text NOT NULL DEFAULT '',
    content    text NOT NULL,
    embedding  vector(768) NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now()
)`

// Connect opens the knowledge-base pool, waiting for the database to come up,
// and bootstraps the pgvector extension and the chunks table.
func Connect() (*pgxpool.Pool, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %v", err)
	}

	maxRetries := 10
	retryDelay := time.Second * 10

	var pool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to the database")
				break
			}
			pool.Close()
			pool = nil
		}

		log.Printf("Failed to connect to the database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %v", maxRetries, err)
	}

	// The chunks table depends on the vector type.
	if _, err := pool.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return nil, fmt.Errorf("unable to create vector extension: %v", err)
	}
	if _, err := pool.Exec(context.Background(), schemaSQL); err != nil {
		return nil, fmt.Errorf("unable to create chunks table: %v", err)
	}

	return pool, nil
}
