package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// The memory file is a sequence of self-describing records, one JSON object
// per non-empty line, discriminated by the "type" field:
//
//	{"type":"entity","name":...,"entityType":...,"observations":[...]}
//	{"type":"relation","from":...,"to":...,"relationType":...}
//
// No header, no version field. This shape is wire-compatible with existing
// memory files and must not change.

type entityRecord struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

type relationRecord struct {
	Type         string `json:"type"`
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// load reads the memory file into a fresh working graph. A missing file is
// an empty graph (first run). Lines that fail to parse are logged and
// skipped rather than failing the whole load.
func (s *Store) load() (*memGraph, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return newMemGraph(), nil
	}
	if err != nil {
		return nil, &PersistError{Op: "load", Path: s.path, Err: err}
	}
	defer f.Close()

	g, err := decodeGraph(f, s.path)
	if err != nil {
		return nil, &PersistError{Op: "load", Path: s.path, Err: err}
	}
	return g, nil
}

// decodeGraph reads records line by line. Lines are unbounded: observations
// are free text, and anything save can write load must be able to read
// back. The name argument is only used in skip warnings.
func decodeGraph(r io.Reader, name string) (*memGraph, error) {
	g := newMemGraph()
	br := bufio.NewReader(r)

	lineno := 0
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		atEOF := err == io.EOF
		lineno++
		line = bytes.TrimRight(line, "\n")
		if len(line) == 0 || isBlank(line) {
			if atEOF {
				break
			}
			continue
		}

		// Probe the discriminator first, then decode the full record shape.
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			log.Printf("Warning: %s:%d: skipping malformed record: %v", name, lineno, err)
			continue
		}

		switch probe.Type {
		case "entity":
			var rec entityRecord
			if err := json.Unmarshal(line, &rec); err != nil || rec.Name == "" {
				log.Printf("Warning: %s:%d: skipping malformed entity record", name, lineno)
				continue
			}
			if rec.Observations == nil {
				rec.Observations = []string{}
			}
			// A repeated name keeps its original position but the later
			// record's data wins, matching how the original loads.
			if _, ok := g.entities[rec.Name]; !ok {
				g.order = append(g.order, rec.Name)
			}
			g.entities[rec.Name] = &Entity{
				Name:         rec.Name,
				EntityType:   rec.EntityType,
				Observations: rec.Observations,
			}
		case "relation":
			var rec relationRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				log.Printf("Warning: %s:%d: skipping malformed relation record", name, lineno)
				continue
			}
			g.relations = append(g.relations, Relation{
				From:         rec.From,
				To:           rec.To,
				RelationType: rec.RelationType,
			})
		default:
			log.Printf("Warning: %s:%d: skipping record of unknown type %q", name, lineno, probe.Type)
		}
	}
	return g, nil
}

// save rewrites the whole memory file from the working graph: all entity
// records in iteration order, then all relation records. The write goes to
// a temp file in the same directory which is renamed over the target, so a
// failure part-way leaves the previous file intact.
func (s *Store) save(g *memGraph) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}

	if err := encodeGraph(f, g); err != nil {
		f.Close()
		os.Remove(tmp)
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// encodeGraph writes one record per line.
func encodeGraph(w io.Writer, g *memGraph) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for _, name := range g.order {
		e := g.entities[name]
		rec := entityRecord{
			Type:         "entity",
			Name:         e.Name,
			EntityType:   e.EntityType,
			Observations: e.Observations,
		}
		if rec.Observations == nil {
			rec.Observations = []string{}
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, r := range g.relations {
		rec := relationRecord{
			Type:         "relation",
			From:         r.From,
			To:           r.To,
			RelationType: r.RelationType,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' {
			return false
		}
	}
	return true
}
