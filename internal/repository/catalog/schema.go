package catalog

import "github.com/kailas-cloud/review/internal/db"

// Tables returns the catalog schema for embeddings of the given dimension.
func Tables(dim int) []*db.TableDefinition {
	return []*db.TableDefinition{
		db.NewTable("categories").
			Key("id").
			Text("name").
			Int("level").
			MustBuild(),
		db.NewTable("products").
			Key("id").
			Text("title").
			Text("description").
			Text("features").
			NullableReal("price").
			Real("average_rating").
			Int("rating_count").
			Text("store").
			Vector("embedding", dim).
			Index("average_rating").
			Index("rating_count").
			MustBuild(),
		db.NewTable("reviews").
			Key("id").
			Ref("product_id", "products", "id").
			Real("rating").
			Text("title").
			Text("text").
			Int("helpful_votes").
			Bool("verified_purchase").
			Vector("embedding", dim).
			Index("product_id").
			MustBuild(),
		db.NewTable("product_categories").
			Ref("product_id", "products", "id").
			Ref("category_id", "categories", "id").
			CompositeKey("product_id", "category_id").
			Index("category_id").
			MustBuild(),
	}
}
