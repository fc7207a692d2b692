package health

import "context"

// EnginePinger checks search engine availability.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// DictionaryCounter counts rows in the suggestion dictionary.
type DictionaryCounter interface {
	Count(ctx context.Context, text string, indexes ...string) (int, error)
}
