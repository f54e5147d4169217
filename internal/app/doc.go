// Package app builds the service container shared by the CLI, HTTP and MCP
// entry points from resolved settings.
package app
