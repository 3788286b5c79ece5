package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bcardhq/bcard-api/config"
	"github.com/bcardhq/bcard-api/database/seeders"
	"github.com/bcardhq/bcard-api/pkg/database"
)

// bootDB loads config and opens the MongoDB connection.
func bootDB(ctx context.Context) (*mongo.Database, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect(ctx, config.MongoURI(), config.MongoDB())
}

// bcard seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer database.Disconnect(context.Background(), db) //nolint:errcheck

		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, db)
	},
}

// bcard db:indexes
var dbIndexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the unique indexes the API relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer database.Disconnect(context.Background(), db) //nolint:errcheck

		fmt.Println("Creating indexes…")
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		fmt.Println("done")
		return nil
	},
}
