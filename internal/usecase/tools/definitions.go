package tools

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/kailas-cloud/review/internal/usecase/catalog"
	"github.com/kailas-cloud/review/internal/usecase/finder"
)

func definitions(find Finder, lookups Lookups) []Tool {
	return []Tool{
		{
			Name: FindProductByName,
			Description: "Finds products by name or partial name match and retrieves helpful reviews. " +
				"Use this to get detailed information about a specific product including its reviews.",
			Parameters: object(map[string]jsonschema.Definition{
				"name": str("Product name or part of it"),
			}, "name"),
			failure: "Failed to find product information",
			invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
				name, err := decodeText(args, "name")
				if err != nil {
					return nil, malformed(err)
				}
				out, err := lookups.FindByName(ctx, name)
				return out, withMessage("Product name is required", err)
			},
		},
		{
			Name: GetPopularProducts,
			Description: "Gets the most popular products (by review count) in a category. " +
				"If category is empty, returns the most popular products overall.",
			Parameters: object(map[string]jsonschema.Definition{
				"category": str("Category name to filter products by"),
				"limit":    num(jsonschema.Integer, "Maximum number of products to return (default 10)"),
			}),
			failure: "Failed to retrieve popular products",
			invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Category string `json:"category"`
					Limit    number `json:"limit"`
				}
				if err := decodeArgs(args, &in); err != nil {
					return nil, malformed(err)
				}
				return lookups.Popular(ctx, in.Category, in.Limit.intOr(catalog.DefaultListLimit))
			},
		},
		{
			Name: GetBestRatedProducts,
			Description: "Gets the highest rated products in a category or overall. " +
				"Optionally filter by minimum review count.",
			Parameters: object(map[string]jsonschema.Definition{
				"category":    str("Category name to filter products by"),
				"limit":       num(jsonschema.Integer, "Maximum number of products to return (default 10)"),
				"min_reviews": num(jsonschema.Integer, "Minimum number of reviews required (default 5)"),
			}),
			failure: "Failed to retrieve best rated products",
			invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Category   string `json:"category"`
					Limit      number `json:"limit"`
					MinReviews number `json:"min_reviews"`
				}
				if err := decodeArgs(args, &in); err != nil {
					return nil, malformed(err)
				}
				return lookups.BestRated(ctx, in.Category,
					in.Limit.intOr(catalog.DefaultListLimit), in.MinReviews.intOr(catalog.DefaultMinReviews))
			},
		},
		{
			Name: FindProductByDescription,
			Description: "Finds products that match a given description. " +
				"Use this to find products based on features or other attributes.",
			Parameters: object(map[string]jsonschema.Definition{
				"description": str("Natural language description of the product"),
			}, "description"),
			failure: "Failed to find products matching description",
			invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
				text, err := decodeText(args, "description")
				if err != nil {
					return nil, malformed(err)
				}
				out, err := lookups.FindByDescription(ctx, text)
				return out, withMessage("Product description is required", err)
			},
		},
		{
			Name: GetProductReviewsDetails,
			Description: "Gets the most helpful reviews for the product and a rating distribution. " +
				"Use this to get insights into a product's reviews and ratings.",
			Parameters: object(map[string]jsonschema.Definition{
				"product_id": str("Product ID to get reviews for"),
				"limit":      num(jsonschema.Integer, "Maximum number of reviews to return (default 5)"),
			}, "product_id"),
			failure: "Failed to retrieve product reviews details",
			invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					ProductID string `json:"product_id"`
					Limit     number `json:"limit"`
				}
				if err := decodeArgs(args, &in); err != nil {
					return nil, malformed(err)
				}
				out, err := lookups.ReviewDetails(ctx, in.ProductID, in.Limit.intOr(catalog.DefaultReviewsLimit))
				return out, withMessage("Product ID is required", err)
			},
		},
		{
			Name: FindProductsByExample,
			Description: "Finds products that match specific user requirements or preferences expressed as an " +
				"example review. Use this when the user has specific needs or is looking for recommendations " +
				"based on particular criteria.",
			Parameters: object(map[string]jsonschema.Definition{
				"example_review": str("Example review or user requirements in natural language"),
				"category":       str("Category to search within"),
				"min_rating":     num(jsonschema.Number, "Minimum rating (1-5, default 4)"),
				"max_rating":     num(jsonschema.Number, "Maximum rating (1-5, inclusive)"),
				"limit":          num(jsonschema.Integer, "Maximum number of products to return (default 5)"),
			}, "example_review"),
			failure: "Failed to find products matching user requirements",
			invoke: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					ExampleReview string `json:"example_review"`
					Category      string `json:"category"`
					MinRating     number `json:"min_rating"`
					MaxRating     number `json:"max_rating"`
					Limit         number `json:"limit"`
				}
				if err := decodeArgs(args, &in); err != nil {
					return nil, malformed(err)
				}
				return find.Find(ctx, finder.Input{
					ExampleReview: in.ExampleReview,
					Category:      in.Category,
					MinRating:     in.MinRating.ptr(),
					MaxRating:     in.MaxRating.ptr(),
					Limit:         in.Limit.intOr(0),
				}), nil
			},
		},
	}
}

func object(props map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Object, Properties: props, Required: required}
}

func str(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func num(t jsonschema.DataType, desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: t, Description: desc}
}
