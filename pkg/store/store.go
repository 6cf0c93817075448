// Package store provides the badger-backed storage backend consumed by the
// insert engine: a type registry, concept records, attribute identity and
// the role-player / ownership edges between concepts.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tesseradb/tessera/pkg/graph"
)

var (
	ErrUnknownType  = fmt.Errorf("unknown type")
	ErrKindMismatch = fmt.Errorf("kind mismatch")
	ErrNotAType     = fmt.Errorf("concept is not a schema type")
)

// UnknownTypeError carries nearest-label suggestions for diagnostics.
type UnknownTypeError struct {
	Label       string
	Suggestions []string
}

func (e *UnknownTypeError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%v: %q", ErrUnknownType, e.Label)
	}
	return fmt.Sprintf("%v: %q (did you mean %v?)", ErrUnknownType, e.Label, e.Suggestions)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// conceptRecord is the persisted form of a concept.
type conceptRecord struct {
	ID    string     `json:"id"`
	Kind  graph.Kind `json:"kind"`
	Type  bool       `json:"type,omitempty"`
	Label string     `json:"label,omitempty"`
	Value any        `json:"value,omitempty"`
}

func toRecord(c graph.Concept) conceptRecord {
	return conceptRecord{ID: c.ID, Kind: c.Kind, Type: c.Type, Label: c.Label, Value: c.Value}
}

func (r conceptRecord) concept() graph.Concept {
	return graph.Concept{ID: r.ID, Kind: r.Kind, Type: r.Type, Label: r.Label, Value: r.Value}
}

// GraphStore implements graph.Backend on BadgerDB. One writer at a time; the
// caller serializes operations against one store.
type GraphStore struct {
	db     *badger.DB
	cfg    *Config
	labels *lru.Cache[string, graph.Concept]
}

// Open opens a GraphStore with the given configuration. A nil configuration
// uses defaults rooted at path.
func Open(path string, cfg *Config) (*GraphStore, error) {
	if cfg == nil {
		cfg = DefaultConfig(path)
	} else if cfg.DataDir == "" {
		cfg.DataDir = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	db, err := openBadgerDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	labels, err := lru.New[string, graph.Concept](cfg.LabelCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("opened graph store", "dir", cfg.DataDir, "in_memory", cfg.InMemory, "read_only", cfg.ReadOnly)
	return &GraphStore{db: db, cfg: cfg, labels: labels}, nil
}

// Close releases the underlying database.
func (s *GraphStore) Close() error {
	slog.Info("closing graph store", "dir", s.cfg.DataDir)
	return s.db.Close()
}

// DefineType registers a schema type. Defining an existing label with the
// same kind is a no-op returning the existing type; a different kind fails.
func (s *GraphStore) DefineType(ctx context.Context, label string, kind graph.Kind) (graph.Concept, error) {
	if label == "" {
		return graph.Concept{}, fmt.Errorf("type label cannot be empty")
	}
	if !kind.IsValid() {
		return graph.Concept{}, fmt.Errorf("%w: %q", ErrKindMismatch, kind)
	}

	existing, err := s.ResolveType(ctx, label)
	if err == nil {
		if existing.Kind != kind {
			return graph.Concept{}, fmt.Errorf("%w: type %q is %s, not %s", ErrKindMismatch, label, existing.Kind, kind)
		}
		return existing, nil
	}

	typ := graph.Concept{ID: uuid.NewString(), Kind: kind, Type: true, Label: label}
	err = s.withWriteTxn(func(txn *badger.Txn) error {
		if err := s.putConcept(txn, typ); err != nil {
			return err
		}
		return txn.Set(labelKey(label), []byte(typ.ID))
	})
	if err != nil {
		return graph.Concept{}, err
	}

	s.labels.Add(label, typ)
	slog.Debug("defined type", "label", label, "kind", kind, "id", typ.ID)
	return typ, nil
}

// ResolveType resolves a schema type by label. Unknown labels fail with an
// UnknownTypeError carrying nearest-label suggestions.
func (s *GraphStore) ResolveType(ctx context.Context, label string) (graph.Concept, error) {
	if typ, ok := s.labels.Get(label); ok {
		return typ, nil
	}

	var typ graph.Concept
	err := s.withReadTxn(func(txn *badger.Txn) error {
		item, err := txn.Get(labelKey(label))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			typ, err = s.getConcept(txn, string(val))
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return graph.Concept{}, &UnknownTypeError{Label: label, Suggestions: s.suggestLabels(label)}
	}
	if err != nil {
		return graph.Concept{}, err
	}

	s.labels.Add(label, typ)
	return typ, nil
}

// CreateEntity creates a new entity instance of the given type.
func (s *GraphStore) CreateEntity(ctx context.Context, typ graph.Concept) (graph.Concept, error) {
	return s.createInstance(typ, graph.KindEntity)
}

// CreateRelation creates a new relation instance of the given type.
func (s *GraphStore) CreateRelation(ctx context.Context, typ graph.Concept) (graph.Concept, error) {
	return s.createInstance(typ, graph.KindRelation)
}

func (s *GraphStore) createInstance(typ graph.Concept, kind graph.Kind) (graph.Concept, error) {
	if err := checkType(typ, kind); err != nil {
		return graph.Concept{}, err
	}
	c := graph.Concept{ID: uuid.NewString(), Kind: kind, Label: typ.Label}
	err := s.withWriteTxn(func(txn *badger.Txn) error {
		return s.putConcept(txn, c)
	})
	if err != nil {
		return graph.Concept{}, err
	}
	slog.Debug("created concept", "kind", kind, "type", typ.Label, "id", c.ID)
	return c, nil
}

// CreateAttribute returns the attribute instance of the given type with the
// given value, creating it if absent. Attribute instances are unique per
// (type, value): equal values resolve to one concept.
func (s *GraphStore) CreateAttribute(ctx context.Context, typ graph.Concept, value any) (graph.Concept, error) {
	if err := checkType(typ, graph.KindAttribute); err != nil {
		return graph.Concept{}, err
	}
	if value == nil {
		return graph.Concept{}, fmt.Errorf("attribute value cannot be nil")
	}
	value = normalizeValue(value)

	idxKey := attributeKey(typ.ID, hash64(fmt.Sprintf("%T:%v", value, value)))
	var c graph.Concept
	err := s.withWriteTxn(func(txn *badger.Txn) error {
		item, err := txn.Get(idxKey)
		if err == nil {
			return item.Value(func(val []byte) error {
				c, err = s.getConcept(txn, string(val))
				return err
			})
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		c = graph.Concept{ID: uuid.NewString(), Kind: graph.KindAttribute, Label: typ.Label, Value: value}
		if err := s.putConcept(txn, c); err != nil {
			return err
		}
		return txn.Set(idxKey, []byte(c.ID))
	})
	if err != nil {
		return graph.Concept{}, err
	}
	return c, nil
}

// AttachRolePlayer adds a role player to a relation instance.
func (s *GraphStore) AttachRolePlayer(ctx context.Context, relation graph.Concept, role string, player graph.Concept) error {
	if relation.Kind != graph.KindRelation || relation.Type {
		return fmt.Errorf("%w: %s cannot have role players", ErrKindMismatch, relation)
	}
	if role == "" {
		return fmt.Errorf("role cannot be empty")
	}
	return s.withWriteTxn(func(txn *badger.Txn) error {
		edge, err := json.Marshal(roleEdge{Role: role, Player: player.ID})
		if err != nil {
			return err
		}
		return txn.Set(roleKey(relation.ID, role, player.ID), edge)
	})
}

// AttachAttribute attaches an attribute instance to an owner concept.
func (s *GraphStore) AttachAttribute(ctx context.Context, owner, attribute graph.Concept) error {
	if attribute.Kind != graph.KindAttribute || attribute.Type {
		return fmt.Errorf("%w: %s is not an attribute instance", ErrKindMismatch, attribute)
	}
	return s.withWriteTxn(func(txn *badger.Txn) error {
		return txn.Set(ownsKey(owner.ID, attribute.ID), []byte(attribute.ID))
	})
}

type roleEdge struct {
	Role   string `json:"role"`
	Player string `json:"player"`
}

// RolePlayers returns the (role, player) pairs attached to a relation,
// sorted by role then player id. Used by verification tooling and tests.
func (s *GraphStore) RolePlayers(ctx context.Context, relation graph.Concept) ([]graph.RolePlayer, error) {
	var out []graph.RolePlayer
	err := s.withReadTxn(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: roleScanPrefix(relation.ID)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var edge roleEdge
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &edge)
			}); err != nil {
				return err
			}
			player, err := s.getConcept(txn, edge.Player)
			if err != nil {
				return err
			}
			out = append(out, graph.RolePlayer{Role: edge.Role, Player: player})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Player.ID < out[j].Player.ID
	})
	return out, nil
}

// Attributes returns the attribute instances owned by a concept.
func (s *GraphStore) Attributes(ctx context.Context, owner graph.Concept) ([]graph.Concept, error) {
	var out []graph.Concept
	err := s.withReadTxn(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: ownsScanPrefix(owner.ID)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}
			attr, err := s.getConcept(txn, id)
			if err != nil {
				return err
			}
			out = append(out, attr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Concept loads a concept by id.
func (s *GraphStore) Concept(ctx context.Context, id string) (graph.Concept, error) {
	var c graph.Concept
	err := s.withReadTxn(func(txn *badger.Txn) error {
		var err error
		c, err = s.getConcept(txn, id)
		return err
	})
	return c, err
}

func (s *GraphStore) putConcept(txn *badger.Txn, c graph.Concept) error {
	data, err := json.Marshal(toRecord(c))
	if err != nil {
		return err
	}
	return txn.Set(conceptKey(c.ID), data)
}

func (s *GraphStore) getConcept(txn *badger.Txn, id string) (graph.Concept, error) {
	item, err := txn.Get(conceptKey(id))
	if err != nil {
		return graph.Concept{}, fmt.Errorf("concept %s: %w", id, err)
	}
	var rec conceptRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return graph.Concept{}, err
	}
	return rec.concept(), nil
}

// suggestLabels scans the type registry for labels within edit distance 2 of
// the query, closest first, capped at three. Only runs on the failure path.
func (s *GraphStore) suggestLabels(label string) []string {
	type scored struct {
		label string
		dist  int
	}
	var candidates []scored
	_ = s.withReadTxn(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte{labelPrefix}})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			candidate := string(it.Item().Key()[1:])
			if dist := levenshtein.Distance(label, candidate, nil); dist <= 2 {
				candidates = append(candidates, scored{label: candidate, dist: dist})
			}
		}
		return nil
	})
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].label < candidates[j].label
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.label)
	}
	return out
}

// normalizeValue widens numeric values to one representation per logical
// value, so the identity key does not split 42 arriving as int from 42
// arriving as int64 (yaml decodes small integers as int, callers may pass
// either width).
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return n
	case float32:
		return float64(n)
	}
	return v
}

func checkType(typ graph.Concept, kind graph.Kind) error {
	if !typ.Type {
		return fmt.Errorf("%w: %s", ErrNotAType, typ)
	}
	if typ.Kind != kind {
		return fmt.Errorf("%w: type %q is %s, not %s", ErrKindMismatch, typ.Label, typ.Kind, kind)
	}
	return nil
}

var _ graph.Backend = (*GraphStore)(nil)
