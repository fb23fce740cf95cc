// Package tools implements the MCP tool handlers for the knowledge-graph
// store. Every tool returns the uniform result envelope as JSON text:
// {"status":"success"|"error","tool":<name>,...,"message"?}.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memograph/memograph/internal/graph"
)

// MemoryTools holds references needed by knowledge graph tool handlers.
type MemoryTools struct {
	Store *graph.Store
}

// --- Input types ---

type CreateEntitiesInput struct {
	Entities []EntityInput `json:"entities" jsonschema:"Array of entities to create"`
}

type EntityInput struct {
	Name         string   `json:"name" jsonschema:"Entity name (unique)"`
	EntityType   string   `json:"entityType" jsonschema:"Entity type (e.g., person, project, concept)"`
	Observations []string `json:"observations,omitempty" jsonschema:"Initial observations about the entity"`
}

type CreateRelationsInput struct {
	Relations []RelationInput `json:"relations" jsonschema:"Array of relations to create"`
}

type RelationInput struct {
	From         string `json:"from" jsonschema:"Source entity name"`
	To           string `json:"to" jsonschema:"Target entity name"`
	RelationType string `json:"relationType" jsonschema:"Relation type in active voice (e.g., knows, uses, manages)"`
}

type AddObservationsInput struct {
	EntityName   string   `json:"entity_name" jsonschema:"Name of the entity"`
	Observations []string `json:"observations" jsonschema:"Observation texts to append"`
}

type DeleteEntitiesInput struct {
	EntityNames []string `json:"entity_names" jsonschema:"Entity names to delete (unknown names are ignored)"`
}

type DeleteObservationsInput struct {
	EntityName   string   `json:"entity_name" jsonschema:"Name of the entity"`
	Observations []string `json:"observations" jsonschema:"Observation strings to match and remove"`
}

type DeleteRelationsInput struct {
	Relations []RelationInput `json:"relations" jsonschema:"Array of relations to delete (unknown relations are ignored)"`
}

type SearchNodesInput struct {
	Query string `json:"query" jsonschema:"Case-insensitive substring to match against names, types, and observations"`
}

type OpenNodesInput struct {
	Names []string `json:"names" jsonschema:"Exact entity names to retrieve (unknown names are skipped)"`
}

// --- Handlers ---

func (t *MemoryTools) CreateEntities(_ context.Context, _ *mcp.CallToolRequest, input CreateEntitiesInput) (*mcp.CallToolResult, any, error) {
	entities := make([]graph.Entity, len(input.Entities))
	for i, e := range input.Entities {
		entities[i] = graph.Entity{
			Name:         e.Name,
			EntityType:   e.EntityType,
			Observations: e.Observations,
		}
	}

	names, err := t.Store.CreateEntities(entities)
	if err != nil {
		return toolError("create_entities", err), nil, nil
	}

	return toolSuccess("create_entities", map[string]any{
		"created":  len(names),
		"entities": names,
	})
}

func (t *MemoryTools) CreateRelations(_ context.Context, _ *mcp.CallToolRequest, input CreateRelationsInput) (*mcp.CallToolResult, any, error) {
	relations := relationsFromInput(input.Relations)
	if err := t.Store.CreateRelations(relations); err != nil {
		return toolError("create_relations", err), nil, nil
	}

	return toolSuccess("create_relations", map[string]any{
		"created":   len(relations),
		"relations": relations,
	})
}

func (t *MemoryTools) AddObservations(_ context.Context, _ *mcp.CallToolRequest, input AddObservationsInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.AddObservations(input.EntityName, input.Observations); err != nil {
		return toolError("add_observations", err), nil, nil
	}

	return toolSuccess("add_observations", map[string]any{
		"entity": input.EntityName,
		"added":  len(input.Observations),
	})
}

func (t *MemoryTools) DeleteEntities(_ context.Context, _ *mcp.CallToolRequest, input DeleteEntitiesInput) (*mcp.CallToolResult, any, error) {
	if _, err := t.Store.DeleteEntities(input.EntityNames); err != nil {
		return toolError("delete_entities", err), nil, nil
	}

	return toolSuccess("delete_entities", map[string]any{
		"deleted":  len(input.EntityNames),
		"entities": input.EntityNames,
	})
}

func (t *MemoryTools) DeleteObservations(_ context.Context, _ *mcp.CallToolRequest, input DeleteObservationsInput) (*mcp.CallToolResult, any, error) {
	if _, err := t.Store.DeleteObservations(input.EntityName, input.Observations); err != nil {
		return toolError("delete_observations", err), nil, nil
	}

	return toolSuccess("delete_observations", map[string]any{
		"entity":  input.EntityName,
		"deleted": len(input.Observations),
	})
}

func (t *MemoryTools) DeleteRelations(_ context.Context, _ *mcp.CallToolRequest, input DeleteRelationsInput) (*mcp.CallToolResult, any, error) {
	relations := relationsFromInput(input.Relations)
	if _, err := t.Store.DeleteRelations(relations); err != nil {
		return toolError("delete_relations", err), nil, nil
	}

	return toolSuccess("delete_relations", map[string]any{
		"deleted":   len(relations),
		"relations": relations,
	})
}

func (t *MemoryTools) ReadGraph(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	g, err := t.Store.ReadGraph()
	if err != nil {
		return toolError("read_graph", err), nil, nil
	}

	return toolSuccess("read_graph", map[string]any{
		"entity_count":   len(g.Entities),
		"relation_count": len(g.Relations),
		"graph":          g,
	})
}

func (t *MemoryTools) SearchNodes(_ context.Context, _ *mcp.CallToolRequest, input SearchNodesInput) (*mcp.CallToolResult, any, error) {
	results, err := t.Store.SearchNodes(input.Query)
	if err != nil {
		return toolError("search_nodes", err), nil, nil
	}

	return toolSuccess("search_nodes", map[string]any{
		"query":   input.Query,
		"count":   len(results),
		"results": results,
	})
}

func (t *MemoryTools) OpenNodes(_ context.Context, _ *mcp.CallToolRequest, input OpenNodesInput) (*mcp.CallToolResult, any, error) {
	nodes, err := t.Store.OpenNodes(input.Names)
	if err != nil {
		return toolError("open_nodes", err), nil, nil
	}

	return toolSuccess("open_nodes", map[string]any{
		"requested": len(input.Names),
		"found":     len(nodes),
		"nodes":     nodes,
	})
}

// --- Helpers ---

func relationsFromInput(inputs []RelationInput) []graph.Relation {
	relations := make([]graph.Relation, len(inputs))
	for i, r := range inputs {
		relations[i] = graph.Relation{
			From:         r.From,
			To:           r.To,
			RelationType: r.RelationType,
		}
	}
	return relations
}

// Envelope builds the uniform result envelope shared by the MCP tools and
// the CLI.
func Envelope(tool string, fields map[string]any) map[string]any {
	m := map[string]any{
		"status": "success",
		"tool":   tool,
	}
	for k, v := range fields {
		m[k] = v
	}
	return m
}

// ErrorEnvelope builds the error form of the envelope.
func ErrorEnvelope(tool string, err error) map[string]any {
	return map[string]any{
		"status":  "error",
		"tool":    tool,
		"message": err.Error(),
	}
}

func toolSuccess(tool string, fields map[string]any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(Envelope(tool, fields), "", "  ")
	if err != nil {
		return toolError(tool, fmt.Errorf("marshal result: %w", err)), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func toolError(tool string, err error) *mcp.CallToolResult {
	data, merr := json.MarshalIndent(ErrorEnvelope(tool, err), "", "  ")
	if merr != nil {
		data = []byte(err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
