package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph/internal/graph"
)

var createEntitiesCmd = &cobra.Command{
	Use:   "create-entities <entities-json>",
	Short: "Create entities from a JSON array",
	Long: `Create entities from a JSON array of objects with name, entityType,
and optional observations:

  memograph create-entities '[{"name":"Alice","entityType":"person","observations":["met at conf"]}]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entities []graph.Entity
		if err := json.Unmarshal([]byte(args[0]), &entities); err != nil {
			return fmt.Errorf("parse entities: %w", err)
		}
		names, err := openStore().CreateEntities(entities)
		return printResult("create_entities", map[string]any{
			"created":  len(names),
			"entities": names,
		}, err)
	},
}

var createRelationsCmd = &cobra.Command{
	Use:   "create-relations <relations-json>",
	Short: "Create relations from a JSON array",
	Long: `Create relations from a JSON array of objects with from, to, and
relationType:

  memograph create-relations '[{"from":"Alice","to":"Bob","relationType":"knows"}]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var relations []graph.Relation
		if err := json.Unmarshal([]byte(args[0]), &relations); err != nil {
			return fmt.Errorf("parse relations: %w", err)
		}
		err := openStore().CreateRelations(relations)
		return printResult("create_relations", map[string]any{
			"created":   len(relations),
			"relations": relations,
		}, err)
	},
}

var addObservationsCmd = &cobra.Command{
	Use:   "add-observations <entity> <observation>...",
	Short: "Append observations to an entity",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, observations := args[0], args[1:]
		err := openStore().AddObservations(entity, observations)
		return printResult("add_observations", map[string]any{
			"entity": entity,
			"added":  len(observations),
		}, err)
	},
}

var deleteEntitiesCmd = &cobra.Command{
	Use:   "delete-entities <name>...",
	Short: "Delete entities and every relation touching them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := openStore().DeleteEntities(args)
		return printResult("delete_entities", map[string]any{
			"deleted":  len(args),
			"entities": args,
		}, err)
	},
}

var deleteObservationsCmd = &cobra.Command{
	Use:   "delete-observations <entity> <observation>...",
	Short: "Remove matching observations from an entity",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, observations := args[0], args[1:]
		_, err := openStore().DeleteObservations(entity, observations)
		return printResult("delete_observations", map[string]any{
			"entity":  entity,
			"deleted": len(observations),
		}, err)
	},
}

var deleteRelationsCmd = &cobra.Command{
	Use:   "delete-relations <relations-json>",
	Short: "Delete relations matching a JSON array of triples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var relations []graph.Relation
		if err := json.Unmarshal([]byte(args[0]), &relations); err != nil {
			return fmt.Errorf("parse relations: %w", err)
		}
		_, err := openStore().DeleteRelations(relations)
		return printResult("delete_relations", map[string]any{
			"deleted":   len(relations),
			"relations": relations,
		}, err)
	},
}

var readGraphCmd = &cobra.Command{
	Use:   "read-graph",
	Short: "Print the complete knowledge graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openStore().ReadGraph()
		fields := map[string]any{}
		if err == nil {
			fields = map[string]any{
				"entity_count":   len(g.Entities),
				"relation_count": len(g.Relations),
				"graph":          g,
			}
		}
		return printResult("read_graph", fields, err)
	},
}

var searchNodesCmd = &cobra.Command{
	Use:   "search-nodes <query>",
	Short: "Search entities by case-insensitive substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := openStore().SearchNodes(args[0])
		fields := map[string]any{}
		if err == nil {
			fields = map[string]any{
				"query":   args[0],
				"count":   len(results),
				"results": results,
			}
		}
		return printResult("search_nodes", fields, err)
	},
}

var openNodesCmd = &cobra.Command{
	Use:   "open-nodes <name>...",
	Short: "Retrieve entities by exact name with their relations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := openStore().OpenNodes(args)
		fields := map[string]any{}
		if err == nil {
			fields = map[string]any{
				"requested": len(args),
				"found":     len(nodes),
				"nodes":     nodes,
			}
		}
		return printResult("open_nodes", fields, err)
	},
}

func init() {
	rootCmd.AddCommand(
		createEntitiesCmd,
		createRelationsCmd,
		addObservationsCmd,
		deleteEntitiesCmd,
		deleteObservationsCmd,
		deleteRelationsCmd,
		readGraphCmd,
		searchNodesCmd,
		openNodesCmd,
	)
}
