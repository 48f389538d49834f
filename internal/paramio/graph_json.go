package paramio

import (
	"encoding/json"
	"fmt"
	"os"

	"epigraph/internal/graph"
	"epigraph/internal/secihurd"
)

// EncodeGraph converts a graph to one record per node and one per edge.
func EncodeGraph(g *graph.Graph) map[string]any {
	nodes := make([]any, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		nodes = append(nodes, map[string]any{
			"ID":           n.ID,
			"StayDuration": n.StayDuration,
			"Model":        EncodeModel(n.Sim.Model()),
		})
	}
	edges := make([]any, 0, len(g.Edges()))
	for _, e := range g.Edges() {
		coeffs := make([]any, len(e.Coefficients))
		for i, k := range e.Coefficients {
			coeffs[i] = k
		}
		edges = append(edges, map[string]any{
			"Start":        e.Start,
			"End":          e.End,
			"Coefficients": coeffs,
		})
	}
	return map[string]any{"Nodes": nodes, "Edges": edges}
}

// DecodeGraph rebuilds a graph. Node simulations are created at t0 with
// initial step dt.
func DecodeGraph(fields map[string]any, t0, dt float64) (*graph.Graph, error) {
	r := newRecord("", fields)
	nodesRaw, err := r.ExpectArray("Nodes")
	if err != nil {
		return nil, err
	}
	g := graph.New()
	for i, v := range nodesRaw {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, pathError(fmt.Sprintf("Nodes[%d]", i), fmt.Errorf("%w: not an object", ErrOutOfRange))
		}
		nr := newRecord(fmt.Sprintf("Nodes[%d]", i), obj)
		id, err := nr.ExpectInt("ID")
		if err != nil {
			return nil, err
		}
		if id != i {
			return nil, pathError(fmt.Sprintf("Nodes[%d].ID", i), fmt.Errorf("%w: %d, nodes must be stored in insertion order", ErrOutOfRange, id))
		}
		stay, err := nr.ExpectFloat("StayDuration")
		if err != nil {
			return nil, err
		}
		modelRec, err := nr.ExpectObject("Model")
		if err != nil {
			return nil, err
		}
		m, err := DecodeModel(modelRec.fields)
		if err != nil {
			return nil, pathError(fmt.Sprintf("Nodes[%d].Model", i), err)
		}
		if err := nr.CheckConsumed(); err != nil {
			return nil, err
		}
		g.AddNode(secihurd.NewSimulation(m, t0, dt), stay)
	}

	edgesRaw, err := r.ExpectArray("Edges")
	if err != nil {
		return nil, err
	}
	for i, v := range edgesRaw {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, pathError(fmt.Sprintf("Edges[%d]", i), fmt.Errorf("%w: not an object", ErrOutOfRange))
		}
		er := newRecord(fmt.Sprintf("Edges[%d]", i), obj)
		start, err := er.ExpectInt("Start")
		if err != nil {
			return nil, err
		}
		end, err := er.ExpectInt("End")
		if err != nil {
			return nil, err
		}
		coeffs, err := er.ExpectFloatArray("Coefficients")
		if err != nil {
			return nil, err
		}
		if err := er.CheckConsumed(); err != nil {
			return nil, err
		}
		if _, err := g.AddEdge(start, end, coeffs); err != nil {
			return nil, pathError(fmt.Sprintf("Edges[%d]", i), fmt.Errorf("%w: %v", ErrOutOfRange, err))
		}
	}
	if err := r.CheckConsumed(); err != nil {
		return nil, err
	}
	return g, nil
}

// SaveGraph writes the graph as indented JSON.
func SaveGraph(path string, g *graph.Graph) error {
	data, err := json.MarshalIndent(EncodeGraph(g), "", "  ")
	if err != nil {
		return fileError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fileError(path, err)
	}
	return nil
}

// LoadGraph reads a graph written by SaveGraph.
func LoadGraph(path string, t0, dt float64) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fileError(path, err)
	}
	g, err := DecodeGraph(fields, t0, dt)
	if err != nil {
		return nil, fileError(path, err)
	}
	return g, nil
}
