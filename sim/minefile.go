package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MineFile is the YAML description of a mine layout, loadable from disk.
// Build converts it into a validated Layout.
type MineFile struct {
	Trucks       int           `yaml:"trucks"`
	FullSlowdown float64       `yaml:"full_slowdown"`
	Crushers     []CrusherFile `yaml:"crushers"`
	Shovels      []ShovelFile  `yaml:"shovels"`
	Roads        []RoadFile    `yaml:"roads"`
	Routes       []RouteFile   `yaml:"routes"`
}

// CrusherFile holds one crusher location entry.
type CrusherFile struct {
	Servers        int     `yaml:"servers"`
	EmptyTimeMean  float64 `yaml:"empty_time_mean"`
	EmptyTimeStdev float64 `yaml:"empty_time_stdev"`
}

// ShovelFile holds one shovel entry.
type ShovelFile struct {
	FillTimeMean  float64 `yaml:"fill_time_mean"`
	FillTimeStdev float64 `yaml:"fill_time_stdev"`
}

// RoadFile holds one road segment entry. Travel times are given per
// direction, away from the crusher side first.
type RoadFile struct {
	TravelTimeMean  []float64 `yaml:"travel_time_mean"`
	TravelTimeStdev []float64 `yaml:"travel_time_stdev"`
	OneLane         bool      `yaml:"one_lane"`
}

// RouteFile holds one route entry.
type RouteFile struct {
	Roads      []int `yaml:"roads"`
	Directions []int `yaml:"directions"`
	Crusher    int   `yaml:"crusher"`
	Shovel     int   `yaml:"shovel"`
}

// LoadMineFile reads and parses a YAML mine layout file.
func LoadMineFile(path string) (*MineFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mine layout: %w", err)
	}
	var f MineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing mine layout: %w", err)
	}
	return &f, nil
}

// Build converts the file into a Layout, applying full validation.
func (f *MineFile) Build() (*Layout, error) {
	slowdown := f.FullSlowdown
	if slowdown == 0 {
		slowdown = 1.0
	}
	crushers := make([]CrusherLocation, len(f.Crushers))
	for i, c := range f.Crushers {
		servers := c.Servers
		if servers == 0 {
			servers = 1
		}
		crushers[i] = CrusherLocation{Servers: servers, EmptyTimeMean: c.EmptyTimeMean, EmptyTimeSD: c.EmptyTimeStdev}
	}
	shovels := make([]Shovel, len(f.Shovels))
	for i, s := range f.Shovels {
		shovels[i] = Shovel{FillTimeMean: s.FillTimeMean, FillTimeSD: s.FillTimeStdev}
	}
	roads := make([]Road, len(f.Roads))
	for i, r := range f.Roads {
		if len(r.TravelTimeMean) != 2 {
			return nil, fmt.Errorf("road %d: travel_time_mean needs two entries, got %d", i, len(r.TravelTimeMean))
		}
		if len(r.TravelTimeStdev) != 0 && len(r.TravelTimeStdev) != 2 {
			return nil, fmt.Errorf("road %d: travel_time_stdev needs two entries, got %d", i, len(r.TravelTimeStdev))
		}
		road := Road{OneLane: r.OneLane}
		copy(road.TravelTimeMean[:], r.TravelTimeMean)
		copy(road.TravelTimeSD[:], r.TravelTimeStdev)
		roads[i] = road
	}
	routes := make([]Route, len(f.Routes))
	for i, r := range f.Routes {
		directions := r.Directions
		if directions == nil {
			directions = make([]int, len(r.Roads))
		}
		routes[i] = Route{
			Roads:      append([]int(nil), r.Roads...),
			Directions: append([]int(nil), directions...),
			Crusher:    r.Crusher,
			Shovel:     r.Shovel,
		}
	}
	return NewLayout(f.Trucks, crushers, shovels, roads, routes, slowdown)
}
