package accessroute

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// wayRaw is a pedestrian way waiting for its nodes
type wayRaw struct {
	ID    osm.WayID
	Nodes []osm.NodeID
	Tags  osm.Tags
}

// nodeRaw is a position of way node plus kerb information mapped on the node itself
type nodeRaw struct {
	pos  GeoPoint
	kerb string
}

func newOSMScanner(file *os.File, filename string) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// ReadOSM builds scored segments from pedestrian ways of *.osm (XML) or *.osm.pbf file.
// Configuration may narrow accepted `highway` values, nil accepts every pedestrian way.
// Kerb values mapped on way nodes are applied to ways without own kerb tag
func ReadOSM(filename string, cfg *OSMConfiguration, verbose bool) ([]AccessibilitySegment, error) {
	if verbose {
		fmt.Printf("Opening file: '%s'...\n", filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open OSM file")
	}
	defer file.Close()

	/* Process ways */
	if verbose {
		fmt.Printf("\tProcessing ways... ")
	}
	st := time.Now()
	ways := []*wayRaw{}
	nodesSeen := make(map[osm.NodeID]struct{})
	{
		scannerWays, err := newOSMScanner(file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			if !isPedestrianWay(way.Tags) || !cfg.CheckTag(way.Tags.Find("highway")) {
				continue
			}
			preparedWay := &wayRaw{
				ID:    way.ID,
				Nodes: make([]osm.NodeID, 0, len(way.Nodes)),
				Tags:  make(osm.Tags, len(way.Tags)),
			}
			copy(preparedWay.Tags, way.Tags)
			for _, node := range way.Nodes {
				nodesSeen[node.ID] = struct{}{}
				preparedWay.Nodes = append(preparedWay.Nodes, node.ID)
			}
			ways = append(ways, preparedWay)
		}
		if err := scannerWays.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on ways")
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	// Seek file to start
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	if verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st = time.Now()
	nodes := make(map[osm.NodeID]nodeRaw, len(nodesSeen))
	{
		scannerNodes, err := newOSMScanner(file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; !ok {
				continue
			}
			delete(nodesSeen, node.ID)
			kerb := node.Tags.Find("kerb")
			if kerb == "" && node.Tags.Find("barrier") == "kerb" {
				kerb = "raised"
			}
			nodes[node.ID] = nodeRaw{
				pos:  GeoPoint{Lat: node.Lat, Lon: node.Lon},
				kerb: kerb,
			}
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if verbose {
		fmt.Printf("\tScoring ways... ")
	}
	st = time.Now()
	segments := make([]AccessibilitySegment, 0, len(ways))
	skipped := 0
	for _, way := range ways {
		segment, ok := segmentFromWay(way, nodes)
		if !ok {
			if verbose {
				fmt.Printf("\n\t[WARNING]: Way '%d' references nodes missing in file. Skipping it\n", way.ID)
			}
			skipped++
			continue
		}
		segments = append(segments, segment)
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		fmt.Printf("Number of ways: %d\n", len(ways))
		fmt.Printf("Number of nodes: %d\n", len(nodes))
		fmt.Printf("Skipped ways: %d\n", skipped)
	}
	return segments, nil
}

// segmentFromWay scores way tags and resolves its geometry
func segmentFromWay(way *wayRaw, nodes map[osm.NodeID]nodeRaw) (AccessibilitySegment, bool) {
	geom := make([]GeoPoint, 0, len(way.Nodes))
	nodeKerb := ""
	for _, nodeID := range way.Nodes {
		node, ok := nodes[nodeID]
		if !ok {
			return AccessibilitySegment{}, false
		}
		geom = append(geom, node.pos)
		// Raised kerb is the decisive one
		if node.kerb != "" && (nodeKerb == "" || isHighKerb(strings.ToLower(node.kerb))) {
			nodeKerb = node.kerb
		}
	}
	tags := TagsFromOSM(way.Tags)
	if tags.Kerb == "" {
		tags.Kerb = nodeKerb
	}
	assessment := ScoreTags(tags)
	return AccessibilitySegment{
		ID:         fmt.Sprintf("way/%d", way.ID),
		Geom:       geom,
		Score:      assessment.Score,
		Passable:   assessment.IsAccessible,
		Confidence: assessment.Confidence,
		Issues:     assessment.Issues,
		Tags:       assessment.Tags,
	}, true
}
