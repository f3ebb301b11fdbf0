package accessroute

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

type pairKey struct {
	from NodeID
	to   NodeID
}

// ContractionHierarchy converts the network into contraction hierarchies graph for the profile. Vertex labels are
// node identifiers. Parallel edges are collapsed into the cheapest one, edges the profile can't traverse are skipped
func (net *Network) ContractionHierarchy(profile RouteOptions, contract bool) (*ch.Graph, error) {
	if err := profile.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad routing profile")
	}
	weight := net.weightFunc(profile)
	graph := ch.Graph{}
	for i := 0; i < net.graph.NodesNum(); i++ {
		err := graph.CreateVertex(int64(i))
		if err != nil {
			return nil, errors.Wrap(err, "Can't create vertex")
		}
	}
	cheapest := make(map[pairKey]float64)
	order := []pairKey{}
	for i := 0; i < net.graph.NodesNum(); i++ {
		edges := net.graph.Edges(NodeID(i))
		for j := range edges {
			w, ok := weight(&edges[j])
			if !ok {
				continue
			}
			key := pairKey{from: edges[j].From, to: edges[j].To}
			current, ok := cheapest[key]
			if !ok {
				order = append(order, key)
				cheapest[key] = w
				continue
			}
			if w < current {
				cheapest[key] = w
			}
		}
	}
	for _, key := range order {
		err := graph.AddEdge(int64(key.from), int64(key.to), cheapest[key])
		if err != nil {
			return nil, errors.Wrap(err, "Can't wrap source and target vertices as edge")
		}
	}
	if contract {
		graph.PrepareContractionHierarchies()
	}
	return &graph, nil
}

// ExportNetworkCSV exports the network weighted for the profile into ';'-separated files. If file name is 'map.csv'
// then 'map.csv' (edges), 'map_vertices.csv' and 'map_shortcuts.csv' (contraction only) will be produced.
// Geometry format is 'wkt' or 'geojson'
func (net *Network) ExportNetworkCSV(fname string, profile RouteOptions, geomFormat string, contract bool, verbose bool) error {
	fnamePart := strings.Split(fname, ".csv")
	fnameEdges := fnamePart[0] + ".csv"
	fnameVertices := fnamePart[0] + "_vertices.csv"
	fnameShortcuts := fnamePart[0] + "_shortcuts.csv"

	prepareLine := PrepareWKTLinestring
	preparePoint := PrepareWKTPoint
	if strings.ToLower(geomFormat) == "geojson" {
		prepareLine = PrepareGeoJSONLinestring
		preparePoint = PrepareGeoJSONPoint
	}

	if verbose {
		fmt.Printf("Exporting edges to '%s'...", fnameEdges)
	}
	st := time.Now()
	err := net.exportEdgesToCSV(fnameEdges, profile, prepareLine)
	if err != nil {
		return errors.Wrap(err, "Can't export edges")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if verbose && contract {
		fmt.Printf("Starting contraction process...")
	}
	st = time.Now()
	graph, err := net.ContractionHierarchy(profile, contract)
	if err != nil {
		return errors.Wrap(err, "Can't prepare contraction hierarchies")
	}
	if verbose && contract {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	err = net.exportVerticesToCSV(fnameVertices, graph, preparePoint)
	if err != nil {
		return errors.Wrap(err, "Can't export vertices")
	}
	if contract {
		err = graph.ExportShortcutsToFile(fnameShortcuts)
		if err != nil {
			return errors.Wrap(err, "Can't export shortcuts")
		}
	}
	return nil
}

func (net *Network) exportEdgesToCSV(fname string, profile RouteOptions, prepareLine func([]GeoPoint) string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	weight := net.weightFunc(profile)
	// weight is -1 for edges the profile can't traverse
	err = writer.Write([]string{"from_vertex_id", "to_vertex_id", "weight", "base_weight", "length_meters", "kind", "direction", "segment_id", "score", "accessible", "confidence", "issues", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i := 0; i < net.graph.NodesNum(); i++ {
		edges := net.graph.Edges(NodeID(i))
		for j := range edges {
			edge := &edges[j]
			w, ok := weight(edge)
			if !ok {
				w = -1
			}
			err = writer.Write([]string{
				fmt.Sprintf("%d", edge.From),
				fmt.Sprintf("%d", edge.To),
				fmt.Sprintf("%f", w),
				fmt.Sprintf("%f", edge.Weight),
				fmt.Sprintf("%f", edge.LengthMeters),
				edge.Kind.String(),
				edge.Direction.String(),
				edge.Segment.ID,
				fmt.Sprintf("%f", edge.Segment.Score),
				fmt.Sprintf("%t", edge.Segment.Accessible),
				edge.Segment.Confidence.String(),
				strings.Join(edge.Segment.Issues, ","),
				prepareLine(edge.Geom),
			})
			if err != nil {
				return errors.Wrap(err, "Can't write edge")
			}
		}
	}
	return nil
}

func (net *Network) exportVerticesToCSV(fname string, graph *ch.Graph, preparePoint func(GeoPoint) string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"vertex_id", "order_pos", "importance", "component", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i := range graph.Vertices {
		label := graph.Vertices[i].Label
		id := NodeID(label)
		err = writer.Write([]string{
			fmt.Sprintf("%d", label),
			fmt.Sprintf("%d", graph.Vertices[i].OrderPos()),
			fmt.Sprintf("%d", graph.Vertices[i].Importance()),
			fmt.Sprintf("%d", net.components.Label(id)),
			preparePoint(net.graph.Node(id)),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write vertex")
		}
	}
	return nil
}
