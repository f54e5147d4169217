// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: maps text to fixed-length vectors (Ollama, OpenAI)
//   - VectorStore / Collection: persistent nearest-neighbour storage
//     (SQLite, PostgreSQL + pgvector, memory)
//   - Normaliser / NormaliserRegistry: turn file bytes into document text
//   - Chunker: splits document text into bounded chunks
//   - ConfigStore: application configuration (TOML)
//
// The same EmbeddingService model must be used to build a collection and to
// query it; collections record the model and dimensions they were built with.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
