// Package connectors provides implementations of the DocumentSource
// interface. Each connector knows how to fetch the guidance document from
// a specific kind of location.
package connectors
