// Package http serves the ask API over HTTP with gin.
//
// Routes:
//
//	GET  /         service banner
//	GET  /healthz  collection name and entry count
//	POST /ask      {"question": string, "top_k": int} -> {"question", "answer", "contexts"}
package http
