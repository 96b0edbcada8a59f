// Package review embeds the ReView product finder in a Go program.
//
// The client owns a catalog store (PostgreSQL with pgvector, or SQLite), an optional
// embedding provider and the retrieval cascade that answers "find products like
// this example review":
//
//	client, _ := review.New(ctx,
//	    review.WithSQLite("catalog.db"),
//	    review.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", 1536),
//	)
//	defer client.Close()
//	_ = client.Migrate(ctx)
//	_, _ = client.LoadFile(ctx, "catalog.json")
//	out, _ := client.FindProductsByUserRequirements(ctx, review.Requirements{
//	    ExampleReview: "quiet blender that crushes ice",
//	    Category:      "Kitchen",
//	})
//
// The same capabilities are exposed as LLM tools through Tools, InvokeTool and
// HandleToolCalls.
package review
