// Package cli provides the interactive careervault operator client.
//
// It connects to the vault gRPC endpoint with a bearer token, resolves the
// caller's vault and runs a REPL over the vault operations: adding items and
// answers, reading the audit and recommendations, matching a requirement, and
// the maintenance calls (rescore, reconcile, export). A background watcher
// pings the server and reflects reachability in the prompt.
package cli
