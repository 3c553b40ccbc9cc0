package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/synthese-backend/internal/app"
)

// Repairs a stale search index by re-upserting every article.
func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Services.Article.ReindexAll(context.Background()); err != nil {
		a.Log.Error("Reindex failed", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Reindex complete")
}
