// Package host is the client side of the boundary with the host process.
//
// # Overview
//
// The host owns preferences, workspaces and browser views. This package is
// the only code that talks to it, over three channels:
//
//   - Snapshot queries: blocking GET requests used to seed the local cache
//   - Commands: POST /api/commands, acknowledged by a 2xx status
//   - Push notifications: a WebSocket stream of unsolicited updates
//
// # Files
//
//   - client.go: HTTP client, snapshot queries and command delivery
//   - commands.go: command names and constructors
//   - notifications.go: push notification stream
//   - types.go: data structures mirroring the host payloads
//
// # Client Usage
//
//	client, err := host.NewClient("127.0.0.1:7621")
//	if err != nil {
//		return err
//	}
//
//	prefs, err := client.FetchPreferences(ctx)
//	if err != nil {
//		return err
//	}
//
//	if err := client.Send(ctx, host.SetPreference("proxyMode", "direct")); err != nil {
//		log.Printf("host rejected command: %v", err)
//	}
//
// # Endpoints
//
//   - GET /api/preferences
//   - GET /api/system-preferences
//   - GET /api/workspaces
//   - GET /api/workspace-metas
//   - GET /api/pause-notifications-info
//   - POST /api/commands
//   - GET /api/notifications (WebSocket upgrade)
//
// Commands are JSON objects {"id", "name", "args"}. The id is a random UUID
// so host logs can correlate retries. Notifications are {"name", "args"} with
// args kept as raw JSON until the consumer decodes them.
//
// # Request Handling
//
// All HTTP requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: roost/0.1
//   - Have a 5-second client timeout
//   - Return wrapped errors naming the step that failed
//
// A status of 400 or above is reported as "api <path> returned status N".
//
// # Ordering
//
// A Stream yields notifications in the order the host wrote them. Callers are
// expected to apply them from a single goroutine.
package host
