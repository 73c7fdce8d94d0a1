// Package bangumi provides a client for the Bangumi (bgm.tv) v0 REST API.
//
// The client issues authenticated GET and POST
// requests, classifies the answers into a fixed error taxonomy and hands the
// JSON payloads back as loosely typed Entity values.
//
// # Rate limiting and caching
//
// Every request of a Client passes through one Limiter, so no two requests
// start less than the configured interval (1.1s by default) apart, whichever
// operation issued them. Keyword searches are cached for five minutes per
// (kind, keyword, limit); lookups by id are never cached.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := bangumi.NewClient(
//		"your-access-token",
//		logger,
//		bangumi.WithUserAgent("my-bot/1.0"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// "253" is fetched directly, "Clannad" is searched first
//	subject, err := client.Resolve(ctx, bangumi.KindSubject, "Clannad")
//
// # Error Handling
//
//   - ErrNotFound: 404, or a keyword that matched nothing during Resolve
//   - ErrRateLimited: 429
//   - ErrValidation: bad local input, nothing was sent
//   - *APIError: any other status, or a network failure (StatusCode 0)
//
// Use errors.Is and errors.As to tell them apart.
package bangumi
