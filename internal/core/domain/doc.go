// Package domain contains the core types of the note ingestion pipeline:
// raw uploaded documents, converted notes, the course/school reference
// entities they attach to, and the domain error taxonomy.
//
// Types here are pure data with behaviour that depends on nothing outside
// the standard library. All persistence and I/O lives behind ports.
package domain
