// Package prclient provides the primary entry point for constructing a
// Pressroom API client that implements the papi.Client interface.
//
// It layers configuration, HTTP transport, and authentication on top of
// the resource interfaces and types defined in the papi package. Most
// applications should import prclient to build a client, then use the
// returned papi.Client to access resource-specific clients, for example
// Users(), Content(), Tags(), etc.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/pressroom-io/papi/pkg/papi"
//	  "github.com/pressroom-io/papi/pkg/prclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // The normal case: an endpoint and an API key.
//	  cli, err := prclient.NewWithAPIKey(ctx, "https://press.example.com", "my-api-key")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a bearer token you already have:
//	  cli, err = prclient.New(ctx, &papi.Config{
//	    APIEndpoint: "https://press.example.com",
//	    AccessToken: "eyJhbGciOi...",
//	  })
//
//	  // Or with service-account or password credentials. OAuth2 grants
//	  // post to Config.TokenURL when set, otherwise to
//	  // <endpoint>/oauth/token.
//	  cli, err = prclient.New(ctx, &papi.Config{
//	    APIEndpoint:  "https://press.example.com",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the papi.Client interface
//	  items, err := cli.Content().List(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is
// gated by the environment variable PAPI_DEV_MODE to avoid accidental
// insecure usage in production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithAPIKey, NewWithToken, NewWithServiceAccount, and NewWithPassword
// that wrap New with the appropriate configuration.
package prclient
