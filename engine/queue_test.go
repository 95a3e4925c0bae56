package engine

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

// traceCmd records its id when executed and returns its children.
type traceCmd struct {
	cmd
	id   int
	kids []*traceCmd
	log  *[]int
}

func (c *traceCmd) Op() Op         { return OpStay }
func (c *traceCmd) String() string { return fmt.Sprintf("trace(%d)", c.id) }

func (c *traceCmd) Execute(*Game) Seq {
	*c.log = append(*c.log, c.id)
	out := make(Seq, len(c.kids))
	for i, k := range c.kids {
		out[i] = k
	}
	return out
}

func genForest(t *rapid.T, depth int, next *int, log *[]int) []*traceCmd {
	if depth == 0 {
		return nil
	}
	n := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("width%d", depth))
	out := make([]*traceCmd, n)
	for i := range out {
		*next++
		out[i] = &traceCmd{id: *next, log: log}
		out[i].kids = genForest(t, depth-1, next, log)
	}
	return out
}

func preorder(cmds []*traceCmd, out []int) []int {
	for _, c := range cmds {
		out = append(out, c.id)
		out = preorder(c.kids, out)
	}
	return out
}

// Follow-ups run before anything queued earlier, depth first, in the order
// their parent returned them.
func TestQueue_FollowUpsRunDepthFirst(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var log []int
		next := 0
		roots := genForest(t, 4, &next, &log)

		var q Queue
		for _, r := range roots {
			q.Append(r)
		}
		for !q.IsEmpty() {
			q.Step(nil)
		}

		want := preorder(roots, nil)
		if !slices.Equal(log, want) {
			t.Fatalf("execution order %v, want %v", log, want)
		}
	})
}

func TestQueue_InsertKeepsBlockOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var log []int
		pending := rapid.IntRange(0, 5).Draw(t, "pending")
		block := rapid.IntRange(0, 5).Draw(t, "block")
		front := rapid.Bool().Draw(t, "front")

		var q Queue
		var old, seq []int
		for i := 0; i < pending; i++ {
			q.Append(&traceCmd{id: i, log: &log})
			old = append(old, i)
		}
		var s Seq
		for i := 0; i < block; i++ {
			s = append(s, &traceCmd{id: 100 + i, log: &log}, nil)
			seq = append(seq, 100+i)
		}
		q.Insert(s, front)

		want := append(slices.Clone(old), seq...)
		if front {
			want = append(slices.Clone(seq), old...)
		}
		var got []int
		q.Each(func(c Cmd) { got = append(got, c.(*traceCmd).id) })
		if !slices.Equal(got, want) {
			t.Fatalf("queue %v, want %v", got, want)
		}
		if q.Len() != len(want) {
			t.Fatalf("Len = %d, want %d (nil entries must be dropped)", q.Len(), len(want))
		}
	})
}

func TestQueue_EmptyIsContractViolation(t *testing.T) {
	var q Queue
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}
	expectContract(t, func() { q.PeekNext() })
	expectContract(t, func() { q.Step(nil) })
}

func TestQueue_PeekDoesNotConsume(t *testing.T) {
	var log []int
	var q Queue
	q.Append(&traceCmd{id: 1, log: &log}, &traceCmd{id: 2, log: &log})
	q.Prepend(&traceCmd{id: 0, log: &log})

	if got := q.PeekNext().(*traceCmd).id; got != 0 {
		t.Fatalf("PeekNext = %d, want 0", got)
	}
	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	if c := q.Step(nil).(*traceCmd); c.id != 0 {
		t.Fatalf("Step ran %d, want 0", c.id)
	}
}
