// Package graph implements the persistent knowledge-graph store: named
// entities with free-text observations, typed directed relations between
// them, and a line-oriented JSONL file as the durable backing form.
//
// The store holds no graph state between calls. Every operation loads the
// file fresh, applies its change under invariant checks, and on success
// rewrites the whole file before returning. A second process writing the
// same file concurrently will be clobbered; callers that need concurrent
// access must serialize it themselves.
package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entity is a named node in the knowledge graph. Names are unique across
// the store; observations keep their insertion order.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Relation is a directed, typed edge between two entities. The
// (From, To, RelationType) triple is unique across the store.
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// Graph is the full current set of entities and relations, in creation
// order after accounting for deletions.
type Graph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// SearchResult is an entity matched by SearchNodes, tagged with the first
// field that matched: "name", "type", or "observation".
type SearchResult struct {
	Entity
	Match string `json:"match"`
}

// NodeDetail is an entity plus the relations in which it participates.
type NodeDetail struct {
	Entity
	RelationsFrom []Relation `json:"relations_from"`
	RelationsTo   []Relation `json:"relations_to"`
}

// Store manages one knowledge graph backed by one file. It is safe to keep
// for the life of the process; no file handle is held between operations.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path. The file is not
// touched until the first operation; a missing file reads as an empty graph.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the per-user default memory file location,
// ~/.memograph/graph.jsonl. Falls back to the working directory when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "graph.jsonl"
	}
	return filepath.Join(home, ".memograph", "graph.jsonl")
}

// memGraph is the in-memory working form. Entity iteration order is
// creation order, which Go maps do not preserve, so the order slice is
// authoritative for serialization and read_graph.
type memGraph struct {
	order     []string
	entities  map[string]*Entity
	relations []Relation
}

func newMemGraph() *memGraph {
	return &memGraph{entities: make(map[string]*Entity)}
}

// mutate runs fn against a freshly loaded graph and saves on success.
// A failed fn or a failed save leaves the file at its previous state.
func (s *Store) mutate(fn func(g *memGraph) error) error {
	g, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return s.save(g)
}

// CreateEntities inserts new entities. Each name must be non-empty and not
// already present; the first duplicate aborts the batch and nothing is
// persisted. Omitted observation lists default to empty. Returns the names
// created.
func (s *Store) CreateEntities(entities []Entity) ([]string, error) {
	names := make([]string, 0, len(entities))
	err := s.mutate(func(g *memGraph) error {
		for _, e := range entities {
			if e.Name == "" {
				return ErrEmptyEntityName
			}
			if _, ok := g.entities[e.Name]; ok {
				return fmt.Errorf("entity %q: %w", e.Name, ErrDuplicateEntity)
			}
			obs := make([]string, len(e.Observations))
			copy(obs, e.Observations)
			g.entities[e.Name] = &Entity{
				Name:         e.Name,
				EntityType:   e.EntityType,
				Observations: obs,
			}
			g.order = append(g.order, e.Name)
			names = append(names, e.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// CreateRelations inserts directed relations. Both endpoints must exist and
// the (from, to, relationType) triple must be new; the first failure aborts
// the batch and nothing is persisted.
func (s *Store) CreateRelations(relations []Relation) error {
	return s.mutate(func(g *memGraph) error {
		for _, r := range relations {
			if _, ok := g.entities[r.From]; !ok {
				return fmt.Errorf("entity %q: %w", r.From, ErrEntityNotFound)
			}
			if _, ok := g.entities[r.To]; !ok {
				return fmt.Errorf("entity %q: %w", r.To, ErrEntityNotFound)
			}
			for _, existing := range g.relations {
				if existing == r {
					return fmt.Errorf("relation %s -[%s]-> %s: %w",
						r.From, r.RelationType, r.To, ErrDuplicateRelation)
				}
			}
			g.relations = append(g.relations, r)
		}
		return nil
	})
}

// AddObservations appends observations to an existing entity, preserving
// order and keeping duplicates.
func (s *Store) AddObservations(entityName string, observations []string) error {
	return s.mutate(func(g *memGraph) error {
		e, ok := g.entities[entityName]
		if !ok {
			return fmt.Errorf("entity %q: %w", entityName, ErrEntityNotFound)
		}
		e.Observations = append(e.Observations, observations...)
		return nil
	})
}

// DeleteEntities removes the named entities and every relation touching
// them. Names not present are ignored. Returns the number of entities
// actually removed.
func (s *Store) DeleteEntities(entityNames []string) (int, error) {
	removed := 0
	err := s.mutate(func(g *memGraph) error {
		for _, name := range entityNames {
			if _, ok := g.entities[name]; !ok {
				continue
			}
			delete(g.entities, name)
			for i, n := range g.order {
				if n == name {
					g.order = append(g.order[:i], g.order[i+1:]...)
					break
				}
			}
			kept := g.relations[:0]
			for _, r := range g.relations {
				if r.From != name && r.To != name {
					kept = append(kept, r)
				}
			}
			g.relations = kept
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// DeleteObservations removes every observation on the entity that exactly
// matches any of the given strings, all occurrences included. Returns the
// number of observations removed.
func (s *Store) DeleteObservations(entityName string, observations []string) (int, error) {
	removed := 0
	err := s.mutate(func(g *memGraph) error {
		e, ok := g.entities[entityName]
		if !ok {
			return fmt.Errorf("entity %q: %w", entityName, ErrEntityNotFound)
		}
		drop := make(map[string]bool, len(observations))
		for _, o := range observations {
			drop[o] = true
		}
		kept := e.Observations[:0]
		for _, o := range e.Observations {
			if drop[o] {
				removed++
				continue
			}
			kept = append(kept, o)
		}
		e.Observations = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// DeleteRelations removes every stored relation whose triple matches one of
// the given relations. Relations not present are ignored. Returns the
// number removed.
func (s *Store) DeleteRelations(relations []Relation) (int, error) {
	removed := 0
	err := s.mutate(func(g *memGraph) error {
		kept := g.relations[:0]
		for _, existing := range g.relations {
			match := false
			for _, r := range relations {
				if existing == r {
					match = true
					break
				}
			}
			if match {
				removed++
				continue
			}
			kept = append(kept, existing)
		}
		g.relations = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ReadGraph returns the complete graph in creation order.
func (s *Store) ReadGraph() (*Graph, error) {
	g, err := s.load()
	if err != nil {
		return nil, err
	}
	return g.snapshot(), nil
}

// SearchNodes returns entities matching the query by case-insensitive
// substring, checking name, then entity type, then observations. Each
// entity is reported once, tagged with the first field that matched.
func (s *Store) SearchNodes(query string) ([]SearchResult, error) {
	g, err := s.load()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	results := []SearchResult{}
	for _, name := range g.order {
		e := g.entities[name]
		switch {
		case strings.Contains(strings.ToLower(e.Name), q):
			results = append(results, SearchResult{Entity: e.clone(), Match: "name"})
		case strings.Contains(strings.ToLower(e.EntityType), q):
			results = append(results, SearchResult{Entity: e.clone(), Match: "type"})
		default:
			for _, o := range e.Observations {
				if strings.Contains(strings.ToLower(o), q) {
					results = append(results, SearchResult{Entity: e.clone(), Match: "observation"})
					break
				}
			}
		}
	}
	return results, nil
}

// OpenNodes returns the requested entities with the relations in which
// each participates. Unknown names are silently skipped, so the result may
// be shorter than the request.
func (s *Store) OpenNodes(names []string) ([]NodeDetail, error) {
	g, err := s.load()
	if err != nil {
		return nil, err
	}
	details := []NodeDetail{}
	for _, name := range names {
		e, ok := g.entities[name]
		if !ok {
			continue
		}
		d := NodeDetail{
			Entity:        e.clone(),
			RelationsFrom: []Relation{},
			RelationsTo:   []Relation{},
		}
		for _, r := range g.relations {
			if r.From == name {
				d.RelationsFrom = append(d.RelationsFrom, r)
			}
			if r.To == name {
				d.RelationsTo = append(d.RelationsTo, r)
			}
		}
		details = append(details, d)
	}
	return details, nil
}

// clone returns a copy safe to hand to callers.
func (e *Entity) clone() Entity {
	obs := make([]string, len(e.Observations))
	copy(obs, e.Observations)
	return Entity{Name: e.Name, EntityType: e.EntityType, Observations: obs}
}

// snapshot converts the working form to the caller-facing Graph.
func (g *memGraph) snapshot() *Graph {
	out := &Graph{
		Entities:  make([]Entity, 0, len(g.order)),
		Relations: make([]Relation, 0, len(g.relations)),
	}
	for _, name := range g.order {
		out.Entities = append(out.Entities, g.entities[name].clone())
	}
	out.Relations = append(out.Relations, g.relations...)
	return out
}
