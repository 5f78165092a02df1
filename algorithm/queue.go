package algorithm

import (
	"container/heap"

	"github.com/theoremus-urban-solutions/transit-router/spt"
)

type pqItem struct {
	vertex *spt.Vertex
	key    float64
	seq    uint64
}

// priorityQueue is a min-heap on key; equal keys pop in insertion order
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].key != pq[j].key {
		return pq[i].key < pq[j].key
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) { *pq = append(*pq, x.(*pqItem)) }

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

type queue struct {
	items priorityQueue
	seq   uint64
}

func (q *queue) push(v *spt.Vertex, key float64) {
	q.seq++
	heap.Push(&q.items, &pqItem{vertex: v, key: key, seq: q.seq})
}

func (q *queue) pop() *spt.Vertex {
	return heap.Pop(&q.items).(*pqItem).vertex
}

func (q *queue) len() int { return q.items.Len() }
