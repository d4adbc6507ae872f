package pipeliner

import (
	"container/heap"

	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
)

// attractionQueue pops nodes by decreasing Attraction; ties go to the node
// pushed first.
type attractionQueue struct {
	q   entries
	seq int
}

type entry struct {
	node     *hypergraph.Node
	priority float64
	seq      int
}

func newAttractionQueue(capacity int) *attractionQueue {
	pq := &attractionQueue{q: make(entries, 0, capacity)}
	heap.Init(&pq.q)
	return pq
}

func (pq *attractionQueue) Push(n *hypergraph.Node) {
	heap.Push(&pq.q, &entry{node: n, priority: n.Attraction, seq: pq.seq})
	pq.seq++
}

func (pq *attractionQueue) Pop() *hypergraph.Node {
	return heap.Pop(&pq.q).(*entry).node
}

func (pq *attractionQueue) Len() int { return pq.q.Len() }

type entries []*entry

func (q entries) Len() int { return len(q) }

func (q entries) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q entries) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *entries) Push(x any) { *q = append(*q, x.(*entry)) }

func (q *entries) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}
