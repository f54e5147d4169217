// Package domain holds the entities shared by every layer of isoguide:
// documents and their chunks, collection metadata, questions and answers,
// settings and the sentinel errors.
//
// Domain imports the standard library only. Everything else depends on it.
package domain
