// Package fetcher retrieves HTML documents over HTTP.
//
// HTTPFetcher takes a rate-limit permit before every attempt, retries
// transient failures with bounded exponential backoff, and classifies what
// it could not recover from as a *FetchError:
//
//   - KindNetwork: the request never produced a response
//   - KindHTTPStatus: the server answered with a non-2xx status
//   - KindTerminal: a retryable failure persisted past the last attempt
//
// 429 and 5xx responses are retried; other 4xx responses are returned at once.
//
//	f, err := fetcher.NewHTTPFetcher(
//		fetcher.WithLimiter(ratelimit.New()),
//		fetcher.WithTimeout(30*time.Second),
//	)
//	body, err := f.Fetch(ctx, "https://www.indeed.com/jobs?l=Austin")
package fetcher
