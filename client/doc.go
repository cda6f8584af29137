// Package client provides the APIKit client: authenticate once with an
// app key, then issue requests carrying the returned token.
//
// # Building a Client
//
// Use [Build] with a [config.Config] and functional options:
//
//	c, err := client.Build(config.New("https://api.example.com"),
//		client.WithLogger(logger),
//		client.WithTransportOptions(transport.WithThrottle(10, 5)),
//	)
//
// # Making Requests
//
// Authenticate stores the token; Request attaches it:
//
//	if err := c.Authenticate(ctx, appKey); err != nil { ... }
//	resp, err := c.Request(ctx, "/v1/users",
//		client.WithMethod(http.MethodGet),
//		client.WithParams(map[string]any{"page": 2}),
//	)
//	var users []User
//	err = resp.Decode(&users)
//
// Non-2xx answers come back as [*APIError]; network failures as
// [*TransportError]; Request on a protected path before Authenticate as
// [ErrNotAuthenticated].
//
// # Non-blocking calls
//
// [Async] exposes the same calls as futures:
//
//	a := client.NewAsync(c, client.WithConcurrency(4))
//	f := a.Request(ctx, "/v1/report")
//	// ... do other work ...
//	resp, err := f.Await()
//
// For lower-level control over the wire see the
// [github.com/codeartlibs/apikit-go/client/transport] package.
package client
