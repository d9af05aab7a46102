// Package searchapi is an HTTP client for the hungry search API.
//
//	client, err := searchapi.New(searchapi.Config{
//	    BaseURL: "http://localhost:5000",
//	    Timeout: 10 * time.Second,
//	})
//
//	page, err := client.Search(ctx, model.SearchQuery{City: "Tucson", Page: 1, Limit: 20})
//	categories, err := client.Categories(ctx)
//
// # Errors
//
// A response outside 2xx yields a *StatusError, which matches
// ErrUnexpectedStatus under errors.Is. A body that does not decode yields
// an error wrapping ErrDecode.
package searchapi
