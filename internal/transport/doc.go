// Package transport sends authenticated requests to the TimeTree REST API.
//
// HTTPTransport attaches the bearer token (via golang.org/x/oauth2) and the
// API version Accept header, JSON-encodes request bodies, and turns any
// non-2xx response into an *HTTPError carrying the status code and raw body.
//
// Idempotent GET requests are retried with exponential backoff on 429/502/503/504
// and network errors. Writes are sent exactly once.
//
// Example usage:
//
//	tr, err := transport.New(transport.Config{Token: os.Getenv("TIMETREE_ACCESS_TOKEN")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := tr.Request(ctx, http.MethodGet, "/calendars", nil, nil)
package transport
