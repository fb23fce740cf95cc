package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memograph/memograph/internal/graph"
	"github.com/memograph/memograph/internal/tools"
)

// New creates a fully configured MCP server with all knowledge-graph tools
// registered against the given store.
func New(store *graph.Store) *mcp.Server {
	mt := &tools.MemoryTools{Store: store}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "memograph",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_entities",
		Description: "Create one or more named entities in the knowledge graph",
	}, mt.CreateEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_relations",
		Description: "Create directed, typed relations between existing entities",
	}, mt.CreateRelations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_observations",
		Description: "Append free-text observations to an existing entity",
	}, mt.AddObservations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_entities",
		Description: "Delete entities and cascade-remove every relation touching them",
	}, mt.DeleteEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_observations",
		Description: "Remove specific observation strings from an entity",
	}, mt.DeleteObservations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_relations",
		Description: "Delete specific relations by exact (from, to, relationType) match",
	}, mt.DeleteRelations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "read_graph",
		Description: "Read the entire knowledge graph",
	}, mt.ReadGraph)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_nodes",
		Description: "Search entities by case-insensitive substring across names, types, and observations",
	}, mt.SearchNodes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "open_nodes",
		Description: "Retrieve specific entities by exact name with their incoming and outgoing relations",
	}, mt.OpenNodes)

	return srv
}
