// Standalone end-to-end verification of the insert engine against a real
// badger-backed store: equivalence merging, ordering across chained
// references, attribute dedup and cycle rejection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/tesseradb/tessera/pkg/graph"
	"github.com/tesseradb/tessera/pkg/insert"
	"github.com/tesseradb/tessera/pkg/pattern"
	"github.com/tesseradb/tessera/pkg/store"
)

func main() {
	dir, err := os.MkdirTemp("", "tessera-verify-insert-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := store.DefaultConfig(dir)
	cfg.BlockCacheSize = 64 << 20
	cfg.IndexCacheSize = 64 << 20
	s, err := store.Open(dir, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("Step 1: Defining schema...")
	for _, td := range []struct {
		label string
		kind  graph.Kind
	}{
		{"person", graph.KindEntity},
		{"marriage", graph.KindRelation},
		{"name", graph.KindAttribute},
	} {
		if _, err := s.DefineType(ctx, td.label, td.kind); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("Step 2: Insert with equivalence merge and relation...")
	// Two type vars with the same label must merge; the marriage relates the
	// two people and the name attaches to the first.
	personA := pattern.NewVar("personType")
	personB := pattern.NewVar("personTypeAgain")
	x := pattern.NewVar("x")
	y := pattern.NewVar("y")
	m := pattern.NewVar("m")
	n := pattern.NewVar("n")
	nameType := pattern.NewVar("nameType")
	marriageType := pattern.NewVar("marriageType")

	patterns := []*pattern.VarPattern{
		pattern.New(personA).Type("person"),
		pattern.New(personB).Type("person"),
		pattern.New(x).Isa(personA),
		pattern.New(y).Isa(personB),
		pattern.New(marriageType).Type("marriage"),
		pattern.New(m).Isa(marriageType).Rel("spouse", x).Rel("spouse", y),
		pattern.New(nameType).Type("name"),
		pattern.New(n).Isa(nameType).Val("Alice"),
		pattern.New(x).Has(n),
	}

	result, err := insert.InsertAll(ctx, s, patterns, nil)
	if err != nil {
		log.Fatal(err)
	}
	if result[personA] != result[personB] {
		log.Fatalf("equivalent type vars resolved differently: %s vs %s", result[personA], result[personB])
	}
	fmt.Printf("  merged type vars -> %s\n", result[personA])

	players, err := s.RolePlayers(ctx, result[m])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("  relation %s has %d role players\n", result[m], len(players))
	if len(players) != 2 {
		log.Fatalf("expected 2 role players, got %d", len(players))
	}

	attrs, err := s.Attributes(ctx, result[x])
	if err != nil {
		log.Fatal(err)
	}
	if len(attrs) != 1 || attrs[0].Value != "Alice" {
		log.Fatalf("expected one name attribute 'Alice', got %v", attrs)
	}
	fmt.Printf("  %s has %s\n", result[x], attrs[0])

	fmt.Println("Step 3: Attribute identity across operations...")
	n2 := pattern.NewVar("n2")
	nt2 := pattern.NewVar("nt2")
	again, err := insert.InsertAll(ctx, s, []*pattern.VarPattern{
		pattern.New(nt2).Type("name"),
		pattern.New(n2).Isa(nt2).Val("Alice"),
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	if again[n2].ID != result[n].ID {
		log.Fatalf("attribute 'Alice' deduplicated incorrectly: %s vs %s", again[n2], result[n])
	}
	fmt.Printf("  'Alice' resolves to the same concept %s\n", again[n2].ID)

	fmt.Println("Step 4: Cycle rejection...")
	a := pattern.NewVar("a")
	b := pattern.NewVar("b")
	_, err = insert.InsertAll(ctx, s, []*pattern.VarPattern{
		pattern.New(a).Rel("side", b),
		pattern.New(b).Rel("side", a),
	}, nil)
	if !errors.Is(err, insert.ErrCyclicInsert) {
		log.Fatalf("expected cyclic dependency error, got %v", err)
	}
	fmt.Printf("  rejected as expected: %v\n", err)

	fmt.Println("All insert engine checks passed.")
}
