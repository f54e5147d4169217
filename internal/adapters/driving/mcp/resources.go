package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "isoguide://"

	// CollectionURI names the collection summary resource.
	CollectionURI = uriScheme + "collection"
)

type collectionResource struct {
	Name       string    `json:"name"`
	Count      int       `json:"count"`
	Dimensions int       `json:"dimensions"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         CollectionURI,
		Name:        "collection",
		Description: "Summary of the indexed ISO 27001 collection",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)
}

// handleCollectionResource returns the collection summary as JSON.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info, err := s.ports.Ask.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	data, err := json.MarshalIndent(collectionResource{
		Name:       info.Name,
		Count:      info.Count,
		Dimensions: info.Dimensions,
		Model:      info.Model,
		CreatedAt:  info.CreatedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling collection: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
