package accessroute

import (
	"github.com/paulmach/osm"
)

// HighwayType is the kind of OSM way pedestrians may use
type HighwayType uint16

const (
	HIGHWAY_FOOTWAY = HighwayType(iota + 1)
	HIGHWAY_PEDESTRIAN
	HIGHWAY_PATH
	HIGHWAY_STEPS
	HIGHWAY_LIVING_STREET
	HIGHWAY_CROSSING
	HIGHWAY_CORRIDOR
	HIGHWAY_ELEVATOR
	HIGHWAY_TRACK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_SERVICE
	HIGHWAY_UNCLASSIFIED
)

func (iotaIdx HighwayType) String() string {
	if iotaIdx < HIGHWAY_FOOTWAY || iotaIdx > HIGHWAY_UNCLASSIFIED {
		return "undefined"
	}
	return [...]string{"footway", "pedestrian", "path", "steps", "living_street", "crossing", "corridor", "elevator", "track", "residential", "service", "unclassified"}[iotaIdx-1]
}

var (
	highwaysTypes = map[string]HighwayType{
		"footway":       HIGHWAY_FOOTWAY,
		"pedestrian":    HIGHWAY_PEDESTRIAN,
		"path":          HIGHWAY_PATH,
		"steps":         HIGHWAY_STEPS,
		"living_street": HIGHWAY_LIVING_STREET,
		"crossing":      HIGHWAY_CROSSING,
		"corridor":      HIGHWAY_CORRIDOR,
		"elevator":      HIGHWAY_ELEVATOR,
		"track":         HIGHWAY_TRACK,
		"residential":   HIGHWAY_RESIDENTIAL,
		"service":       HIGHWAY_SERVICE,
		"unclassified":  HIGHWAY_UNCLASSIFIED,
	}

	// dedicatedPedestrian are highway types which are pedestrian infrastructure by themselves.
	// Other types are taken only when foot access is stated explicitly or sidewalk is mapped on the way
	dedicatedPedestrian = map[HighwayType]struct{}{
		HIGHWAY_FOOTWAY:       {},
		HIGHWAY_PEDESTRIAN:    {},
		HIGHWAY_PATH:          {},
		HIGHWAY_STEPS:         {},
		HIGHWAY_LIVING_STREET: {},
		HIGHWAY_CROSSING:      {},
		HIGHWAY_CORRIDOR:      {},
		HIGHWAY_ELEVATOR:      {},
	}

	footDenied = map[string]struct{}{
		"no":           {},
		"private":      {},
		"use_sidepath": {},
	}

	footAllowed = map[string]struct{}{
		"yes":        {},
		"designated": {},
		"permissive": {},
	}

	sidewalkMapped = map[string]struct{}{
		"both":  {},
		"left":  {},
		"right": {},
		"yes":   {},
	}
)

func getHighwayType(str string) HighwayType {
	if found, ok := highwaysTypes[str]; ok {
		return found
	}
	return 0
}

// isPedestrianWay decides whether the way should become a segment by its tags
func isPedestrianWay(tags osm.Tags) bool {
	highwayType := getHighwayType(tags.Find("highway"))
	if highwayType == 0 {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	foot := tags.Find("foot")
	if _, ok := footDenied[foot]; ok {
		return false
	}
	if _, ok := dedicatedPedestrian[highwayType]; ok {
		access := tags.Find("access")
		if access == "no" || access == "private" {
			_, ok := footAllowed[foot]
			return ok
		}
		return true
	}
	if _, ok := footAllowed[foot]; ok {
		return true
	}
	_, ok := sidewalkMapped[tags.Find("sidewalk")]
	return ok
}
