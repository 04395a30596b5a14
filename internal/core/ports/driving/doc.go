// Package driving defines the interfaces the core exposes to its entry
// points: upload intake, conversion orchestration, search, and bulk
// import. The CLI and HTTP adapters depend on these.
package driving
