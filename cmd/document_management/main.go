// Document management demo against a self-hosted instance: creates a
// collection with the master key, inserts documents, searches them, then
// cleans up.
//
// Required environment: ORAMA_URL, ORAMA_MASTER_API_KEY.
package main

import (
	"context"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/oramasearch/oramacore-client-go/pkg/collection"
	"github.com/oramasearch/oramacore-client-go/pkg/logger"
	"github.com/oramasearch/oramacore-client-go/pkg/manager"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env: %v", err)
	}

	url := os.Getenv("ORAMA_URL")
	masterKey := os.Getenv("ORAMA_MASTER_API_KEY")
	if url == "" || masterKey == "" {
		log.Fatal("ORAMA_URL and ORAMA_MASTER_API_KEY must be set")
	}

	zlog := logger.NewDevelopment()
	defer zlog.Sync()

	admin, err := manager.New(manager.Config{URL: url, MasterAPIKey: masterKey, Logger: zlog})
	if err != nil {
		log.Fatalf("create manager: %v", err)
	}

	ctx := context.Background()

	created, err := admin.Collection.Create(ctx, manager.CreateCollectionParams{
		ID:          "demo-products",
		Description: "Document management demo",
	})
	if err != nil {
		log.Fatalf("create collection: %v", err)
	}
	color.Cyan("Collection %s created", created.ID)
	defer func() {
		if err := admin.Collection.Delete(ctx, created.ID); err != nil {
			log.Printf("cleanup failed: %v", err)
		} else {
			color.Cyan("Collection %s deleted", created.ID)
		}
	}()

	coll, err := collection.New(collection.Config{
		CollectionID: created.ID,
		APIKey:       created.WriteAPIKey,
		Cluster:      &collection.ClusterConfig{WriterURL: url, ReaderURL: url},
		Logger:       zlog,
	})
	if err != nil {
		log.Fatalf("create collection manager: %v", err)
	}

	if err := coll.Index.Create(ctx, collection.CreateIndexParams{ID: "products"}); err != nil {
		log.Fatalf("create index: %v", err)
	}

	idx := coll.Index.Set("products")
	docs := []types.AnyObject{
		{"id": "1", "title": "Red sneakers", "price": 59.9},
		{"id": "2", "title": "Blue running shoes", "price": 89.0},
		{"id": "3", "title": "Leather boots", "price": 120.0},
	}
	if err := idx.InsertDocuments(ctx, docs); err != nil {
		log.Fatalf("insert documents: %v", err)
	}
	color.Green("Inserted %d documents", len(docs))

	result, err := coll.Search(ctx, types.SearchParams{Term: "shoes"})
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	color.Cyan("%d results in %s", result.Count, result.Elapsed.Formatted)
	for _, hit := range result.Hits {
		color.Green("  %s (score %.3f)", hit.ID, hit.Score)
	}

	if err := idx.DeleteDocuments(ctx, []string{"1"}); err != nil {
		log.Fatalf("delete documents: %v", err)
	}
	color.Yellow("Deleted document 1")
}
