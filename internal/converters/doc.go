// Package converters provides implementations of the Converter interface
// for the document formats the pipeline accepts. Plain text and HTML are
// handled locally; rich formats (word processor, PDF, note-taking exports)
// go through the external conversion service adapter.
//
// Converters are registered with the Registry at startup.
package converters
