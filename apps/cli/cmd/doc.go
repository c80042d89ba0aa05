// Package cmd implements the hitclient CLI commands using Cobra.
//
// Available commands:
//   - request: Send a request with any method
//   - get, post, put, patch, delete: Method shortcuts
//   - upload: Upload a file as a block blob to a signed URI
//   - uri: Resolve a path template without sending it
//   - mock: Serve canned responses from route files
//   - init: Create a config file and example mock routes
//   - version: Show hitclient version information
//
// Configuration is resolved from defaults, a config file, HITCLIENT_*
// environment variables and flags, in increasing order of precedence.
package cmd
