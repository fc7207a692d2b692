// Package sphinxsuggest is an embeddable client for full-text search over a
// Sphinx/Manticore SphinxQL listener with "did you mean" suggestions built
// from a trigram dictionary index.
//
// # Searching named models
//
//	client, _ := sphinxsuggest.New(ctx,
//	    sphinxsuggest.WithSphinx("127.0.0.1:9306"),
//	    sphinxsuggest.WithModel(sphinxsuggest.Model{
//	        Name:    "products",
//	        Indexes: []string{"products", "products_delta"},
//	        Filters: []sphinxsuggest.Filter{{Attribute: "visible", Values: []any{1}}},
//	    }),
//	)
//	defer client.Close()
//
//	res, _ := client.Query(ctx, "products", "wrold map", 1)
//	if res.Suggestion != nil {
//	    fmt.Println("did you mean:", res.Suggestion.Query)
//	}
//
// # Keeping real-time indexes in sync
//
//	client, _ := sphinxsuggest.New(ctx, sphinxsuggest.WithSphinx(addr), sphinxsuggest.WithIndexing())
//	_ = client.Upsert(ctx, "products_rt", 42, map[string]any{"title": "world map", "price": 12})
//	_ = client.Delete(ctx, "products_rt", 42)
package sphinxsuggest
