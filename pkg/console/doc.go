// Package console provides the types, interfaces, and engine pieces for the
// generic admin console REST API: the cache table, the schema interpreter
// that turns server column metadata into render directives, the selection
// and button state machine, the dynamic form composer with filler cascades,
// and the batch executor for multi-row operations.
//
// # Overview
//
// The console server manages an open-ended set of entity kinds (providers,
// authenticators, pools, calendars, ...), each polymorphic over a
// server-declared sub-type and each describing its own listing columns and
// editable fields. This package holds the generic engine; a concrete client
// implementation is provided by the consoleclient package, which wires
// configuration, transport, and authentication.
//
// Getting a client:
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/metagrid-io/console-client/pkg/console"
//	  "github.com/metagrid-io/console-client/pkg/consoleclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := consoleclient.New(&console.Config{
//	    Endpoint: "https://console.example.com/rest",
//	    Token:    "session-token",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  rows, err := cli.Authenticators().Overview(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = rows
//	}
//
// # Caching
//
// Row data is never cached, so every listing refresh reflects live server
// state. Schema and type metadata are cached for the session under the
// request path. The Cache type makes the distinction structural via the
// KeyVolatile key convention; see its documentation.
//
// # Errors
//
// Non-2xx responses surface as *APIError carrying the raw response body.
// Helpers IsNotFound, IsUnauthorized, and IsForbidden branch on common
// cases. The client never retries on its own unless retries are enabled in
// Config.
package console
