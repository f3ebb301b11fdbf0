package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/LdDl/accessroute"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	fileName      = flag.String("file", "accessible_segments.json", "Filename of input data. Expected: processed segments (*.json), OpenSidewalks FeatureCollection (*.geojson), OSM extract (*.osm / *.osm.pbf)")
	tagStr        = flag.String("tags", "", "Set of accepted highway tag values for OSM input (separated by commas). Empty means every pedestrian way")
	costsFileName = flag.String("costs", "", "Filename of YAML file with cost model overrides. Empty means default costs")
	fromStr       = flag.String("from", "", "Start point as 'lat,lon'")
	toStr         = flag.String("to", "", "End point as 'lat,lon'")
	allowLimited  = flag.Bool("limited", true, "Allow limited segments with moderate penalty")
	allowNonAcc   = flag.Bool("non-accessible", false, "Keep barriers (steps, wheelchair=no) in graph")
	threshold     = flag.Float64("threshold", 0.5, "Score splitting limited segments from severe ones")
	out           = flag.String("out", "", "Filename of GeoJSON file for found route. Empty means JSON result to stdout")
	export        = flag.String("export", "", "Filename of 'Comma-Separated Values' (CSV) formatted network export. E.g.: if file name is 'map.csv' then 3 files will be produced: 'map.csv' (edges), 'map_vertices.csv', 'map_shortcuts.csv'")
	geomFormat    = flag.String("geomf", "wkt", "Format of exported geometry. Expected values: wkt / geojson")
	doContraction = flag.Bool("contract", true, "Prepare contraction hierarchies for export?")
	weld          = flag.Float64("weld", accessroute.DEFAULT_WELD_TOLERANCE, "Weld tolerance in meters. Zero disables welding")
	radius        = flag.Float64("radius", accessroute.DEFAULT_ACCEPTANCE_RADIUS, "Snapping acceptance radius in meters")
	verbose       = flag.Bool("verbose", false, "Print build progress")
	metricsFile   = flag.String("metrics", "", "Filename for Prometheus metrics (text exposition format) collected during the run. Empty means no metrics")
)

func main() {
	flag.Parse()

	segments, err := readSegments(*fileName, *verbose)
	if err != nil {
		fmt.Println(err)
		return
	}

	costs := accessroute.DefaultCostModel()
	if *costsFileName != "" {
		costs, err = accessroute.LoadCostModel(*costsFileName)
		if err != nil {
			fmt.Println(err)
			return
		}
	}

	options := []func(*accessroute.Router){
		accessroute.WithCostModel(costs),
		accessroute.WithWeldTolerance(*weld),
		accessroute.WithAcceptanceRadius(*radius),
		accessroute.WithVerbose(*verbose),
	}
	if *metricsFile != "" {
		registry := prometheus.NewRegistry()
		collector, err := accessroute.NewRouterCollector(registry)
		if err != nil {
			fmt.Println(err)
			return
		}
		options = append(options, accessroute.WithCollector(collector))
		defer func() {
			err := writeMetrics(registry, *metricsFile)
			if err != nil {
				fmt.Println(err)
			}
		}()
	}
	router := accessroute.NewRouter(segments, options...)
	if *verbose {
		fmt.Println(router)
	}

	profile := accessroute.RouteOptions{
		AllowLimitedSegments: *allowLimited,
		AllowNonAccessible:   *allowNonAcc,
		LimitedThreshold:     *threshold,
	}
	network, err := router.Network()
	if err != nil {
		fmt.Println(err)
		return
	}
	if *verbose {
		fmt.Println(network.Stats())
	}

	if *export != "" {
		err = network.ExportNetworkCSV(*export, profile, *geomFormat, *doContraction, *verbose)
		if err != nil {
			fmt.Println(err)
			return
		}
	}

	if *fromStr == "" || *toStr == "" {
		return
	}
	from, err := parsePoint(*fromStr)
	if err != nil {
		fmt.Println(errors.Wrap(err, "Can't parse 'from' point"))
		return
	}
	to, err := parsePoint(*toStr)
	if err != nil {
		fmt.Println(errors.Wrap(err, "Can't parse 'to' point"))
		return
	}

	st := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res, err := router.Route(ctx, from, to, profile)
	if err != nil {
		fmt.Println(err)
		return
	}
	if *verbose {
		fmt.Printf("Route has been prepared in %v\n", time.Since(st))
		fmt.Println(res)
	}

	if *out != "" && res.Success {
		b, err := res.GeoJSON()
		if err != nil {
			fmt.Println(err)
			return
		}
		err = os.WriteFile(*out, b, 0644)
		if err != nil {
			fmt.Println(errors.Wrap(err, "Can't write route file"))
		}
		return
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Println(errors.Wrap(err, "Can't marshal route"))
		return
	}
	fmt.Println(string(b))
}

func readSegments(fname string, verbose bool) ([]accessroute.AccessibilitySegment, error) {
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".osm", ".xml", ".pbf":
		return accessroute.ReadOSM(fname, accessroute.NewOSMConfiguration(*tagStr), verbose)
	case ".geojson":
		file, err := os.Open(fname)
		if err != nil {
			return nil, errors.Wrap(err, "Can't open features file")
		}
		defer file.Close()
		return accessroute.ReadOpenSidewalks(file, verbose)
	default:
		return accessroute.ReadSegmentsFile(fname, verbose)
	}
}

// writeMetrics dumps gathered metrics in Prometheus text format
func writeMetrics(gatherer prometheus.Gatherer, fname string) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "Can't gather metrics")
	}
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create metrics file")
	}
	defer file.Close()
	for _, family := range families {
		_, err = expfmt.MetricFamilyToText(file, family)
		if err != nil {
			return errors.Wrap(err, "Can't write metrics")
		}
	}
	return nil
}

func parsePoint(str string) (accessroute.GeoPoint, error) {
	parts := strings.Split(str, ",")
	if len(parts) != 2 {
		return accessroute.GeoPoint{}, fmt.Errorf("Point should be 'lat,lon', got '%s'", str)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return accessroute.GeoPoint{}, errors.Wrap(err, "Bad latitude")
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return accessroute.GeoPoint{}, errors.Wrap(err, "Bad longitude")
	}
	return accessroute.GeoPoint{Lat: lat, Lon: lon}, nil
}
