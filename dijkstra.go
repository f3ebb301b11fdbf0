package accessroute

import (
	"container/heap"
	"context"
)

// ctxCheckInterval is the number of relaxations between context checks
const ctxCheckInterval = 1024

type searchStatus uint16

const (
	SEARCH_FOUND = searchStatus(iota + 1)
	SEARCH_UNREACHABLE
	SEARCH_EXCEEDED
)

type queueItem struct {
	node     NodeID
	priority float64
	seq      int
}

// nodeQueue is a binary min-heap ordered by priority, then by insertion order
type nodeQueue []queueItem

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority == q[j].priority {
		return q[i].seq < q[j].seq
	}
	return q[i].priority < q[j].priority
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x interface{}) {
	*q = append(*q, x.(queueItem))
}

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// weightFunc returns cost of the edge for the search. False means the edge can't be traversed
type weightFunc func(edge *Edge) (float64, bool)

// searchResult is the outcome of the shortest path search
type searchResult struct {
	status      searchStatus
	cost        float64
	edges       []Edge
	weights     []float64
	relaxations int
}

// step is the edge used to reach the node and its cost
type step struct {
	edge   Edge
	weight float64
}

// shortestPath runs Dijkstra search from source to target over the view. Edge costs come from weight function.
// Search stops on reaching the target, after maxRelaxations edge relaxations or when context is done
func shortestPath(ctx context.Context, view *graphView, source, target NodeID, maxRelaxations int, weight weightFunc) searchResult {
	if source == target {
		return searchResult{status: SEARCH_FOUND, edges: []Edge{}, weights: []float64{}}
	}
	if ctx.Err() != nil {
		return searchResult{status: SEARCH_EXCEEDED}
	}
	distances := map[NodeID]float64{source: 0}
	previous := make(map[NodeID]step)
	settled := make(map[NodeID]struct{})
	queue := &nodeQueue{}
	seq := 0
	heap.Push(queue, queueItem{node: source, priority: 0, seq: seq})
	relaxations := 0
	for queue.Len() > 0 {
		item := heap.Pop(queue).(queueItem)
		if _, ok := settled[item.node]; ok {
			continue
		}
		settled[item.node] = struct{}{}
		if item.node == target {
			break
		}
		edges := view.edges(item.node)
		for i := range edges {
			relaxations++
			if relaxations > maxRelaxations {
				return searchResult{status: SEARCH_EXCEEDED, relaxations: relaxations}
			}
			if relaxations%ctxCheckInterval == 0 && ctx.Err() != nil {
				return searchResult{status: SEARCH_EXCEEDED, relaxations: relaxations}
			}
			edge := &edges[i]
			if _, ok := settled[edge.To]; ok {
				continue
			}
			w, ok := weight(edge)
			if !ok {
				continue
			}
			alt := item.priority + w
			if current, ok := distances[edge.To]; ok && alt >= current {
				continue
			}
			distances[edge.To] = alt
			previous[edge.To] = step{edge: *edge, weight: w}
			seq++
			heap.Push(queue, queueItem{node: edge.To, priority: alt, seq: seq})
		}
	}
	if _, ok := previous[target]; !ok {
		return searchResult{status: SEARCH_UNREACHABLE, relaxations: relaxations}
	}
	path := []Edge{}
	weights := []float64{}
	for current := target; current != source; {
		prev := previous[current]
		path = append(path, prev.edge)
		weights = append(weights, prev.weight)
		current = prev.edge.From
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
		weights[i], weights[j] = weights[j], weights[i]
	}
	return searchResult{
		status:      SEARCH_FOUND,
		cost:        distances[target],
		edges:       path,
		weights:     weights,
		relaxations: relaxations,
	}
}
