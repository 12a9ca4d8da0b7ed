package graph_test

import (
	"reflect"
	"testing"

	"github.com/jsbundle/refscan/internal/graph"
	"github.com/jsbundle/refscan/internal/test"
)

// buildSample inserts edges (None,A), (A,B), (A,C), (B,D), (C,D), the
// scenario named in SPEC_FULL.md §8.
func buildSample() *graph.AdjacencyMap[string] {
	g := graph.New[string]()
	a := "A"
	b := "B"
	c := "C"
	g.Insert(nil, "A")
	g.Insert(&a, "B")
	g.Insert(&a, "C")
	g.Insert(&b, "D")
	g.Insert(&c, "D")
	return g
}

func TestReverseTopologicalOrdersChildrenBeforeParents(t *testing.T) {
	g := buildSample()
	got := g.ReverseTopological()
	want := []string{"D", "B", "C", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBreadthFirstEdgesVisitsEveryTargetWithSingleExpansion(t *testing.T) {
	g := buildSample()
	edges := g.BreadthFirstEdges()
	test.AssertEqual(t, len(edges), 5)

	d := 0
	for _, e := range edges {
		if e.Child == "D" {
			d++
		}
	}
	test.AssertEqual(t, d, 2)
}

func TestReverseTopologicalFromSingleNode(t *testing.T) {
	g := buildSample()
	got := g.ReverseTopologicalFrom("B")
	want := []string{"D", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReverseTopologicalBreaksCycles(t *testing.T) {
	g := graph.New[string]()
	g.Insert(nil, "A")
	a := "A"
	g.Insert(&a, "B")
	b := "B"
	g.Insert(&b, "A") // cycle back to the root

	got := g.ReverseTopological()
	// Must terminate and must visit each node exactly once.
	test.AssertEqual(t, len(got), 2)
}
