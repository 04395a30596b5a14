// Package driven defines the interfaces the core depends on: document and
// note persistence, the converter registry, the conversion job queue, the
// search engine, and the external blob storage service.
//
// Adapters under internal/adapters/driven implement these interfaces.
// Every dependency is injected at process start; the core holds no global
// clients.
package driven
