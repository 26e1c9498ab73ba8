package executor

import (
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

type GraphNode struct {
	Node          domain.Node
	IncomingEdges []domain.Edge
	OutgoingEdges []domain.Edge
}

// ExecutionGraph is rebuilt for every run from the workflow's flat node and
// edge lists.
type ExecutionGraph struct {
	Nodes        map[string]*GraphNode
	Order        []string
	StartNodeIDs []string
	DroppedEdges []domain.Edge
}

type BuildGraphOptions struct {
	// StrictEdges rejects edges that reference unknown nodes instead of
	// dropping them.
	StrictEdges bool
}

func BuildExecutionGraph(nodes []domain.Node, edges []domain.Edge, opts BuildGraphOptions) (*ExecutionGraph, error) {
	graph := &ExecutionGraph{
		Nodes:        make(map[string]*GraphNode, len(nodes)),
		Order:        make([]string, 0, len(nodes)),
		StartNodeIDs: []string{},
		DroppedEdges: []domain.Edge{},
	}

	for i, node := range nodes {
		if node.ID == "" {
			return nil, &domain.GraphError{Reason: fmt.Sprintf("node at index %d has an empty id", i)}
		}

		if _, exists := graph.Nodes[node.ID]; exists {
			return nil, &domain.GraphError{Reason: fmt.Sprintf("duplicate node id %s", node.ID)}
		}

		graph.Nodes[node.ID] = &GraphNode{
			Node:          node,
			IncomingEdges: []domain.Edge{},
			OutgoingEdges: []domain.Edge{},
		}
		graph.Order = append(graph.Order, node.ID)
	}

	for _, edge := range edges {
		source, sourceOK := graph.Nodes[edge.Source]
		target, targetOK := graph.Nodes[edge.Target]

		if !sourceOK || !targetOK {
			if opts.StrictEdges {
				return nil, &domain.GraphError{
					Reason: fmt.Sprintf("edge references unknown node (%s -> %s)", edge.Source, edge.Target),
					EdgeID: edge.ID,
				}
			}

			graph.DroppedEdges = append(graph.DroppedEdges, edge)
			continue
		}

		source.OutgoingEdges = append(source.OutgoingEdges, edge)
		target.IncomingEdges = append(target.IncomingEdges, edge)
	}

	for _, nodeID := range graph.Order {
		if len(graph.Nodes[nodeID].IncomingEdges) == 0 {
			graph.StartNodeIDs = append(graph.StartNodeIDs, nodeID)
		}
	}

	if len(graph.StartNodeIDs) == 0 {
		return nil, &domain.GraphError{Reason: domain.ErrNoStartNodes.Error(), Cause: domain.ErrNoStartNodes}
	}

	return graph, nil
}

func (g *ExecutionGraph) Node(nodeID string) (*GraphNode, bool) {
	node, ok := g.Nodes[nodeID]
	return node, ok
}

func (g *ExecutionGraph) Size() int {
	return len(g.Nodes)
}
