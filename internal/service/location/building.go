package location

import (
	"math"
	"strings"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/pkg/geo"
	geohash "github.com/TomiHiltunen/geohash-golang"
)

const (
	// OnCampus is reported when no known building is close enough.
	OnCampus = "On Campus"

	BuildingMatchRadius = 100.0

	ResolverLinear  = "linear"
	ResolverGeohash = "geohash"
)

// DefaultBuildings is the campus building list used when none is configured.
var DefaultBuildings = []models.Building{
	{Name: "Main Library", Latitude: 51.09052, Longitude: 71.39810},
	{Name: "Student Center", Latitude: 51.08965, Longitude: 71.39930},
	{Name: "Engineering Building", Latitude: 51.09120, Longitude: 71.39665},
	{Name: "Science Hall", Latitude: 51.09010, Longitude: 71.40105},
	{Name: "Sports Complex", Latitude: 51.08820, Longitude: 71.40240},
	{Name: "Residence Block A", Latitude: 51.08730, Longitude: 71.39780},
}

// NewBuildingResolver returns the resolver named by kind; unknown kinds fall back to linear.
func NewBuildingResolver(kind string, buildings []models.Building) BuildingResolver {
	if strings.EqualFold(kind, ResolverGeohash) {
		return NewGeohashResolver(buildings)
	}
	return NewLinearResolver(buildings)
}

// LinearResolver checks every building. Fine for a campus-sized list.
type LinearResolver struct {
	buildings []models.Building
	radius    float64
}

func NewLinearResolver(buildings []models.Building) *LinearResolver {
	return &LinearResolver{
		buildings: buildings,
		radius:    BuildingMatchRadius,
	}
}

func (r *LinearResolver) Resolve(lat, lon float64) string {
	return closest(r.buildings, lat, lon, r.radius)
}

func closest(buildings []models.Building, lat, lon, radius float64) string {
	best := OnCampus
	bestDist := math.Inf(1)
	for _, b := range buildings {
		d := geo.HaversineMeters(lat, lon, b.Latitude, b.Longitude)
		if d <= radius && d < bestDist {
			best, bestDist = b.Name, d
		}
	}
	return best
}

// geohashPrecision 6 gives cells of roughly 1.2 km x 0.6 km, wider than the
// 200 m search box in both directions below polarLimit.
const (
	geohashPrecision = 6
	polarLimit       = 80.0
)

// GeohashResolver buckets buildings by geohash cell and only measures
// buildings in the cells touched by the search box around the point.
type GeohashResolver struct {
	cells    map[string][]models.Building
	linear   *LinearResolver
	radius   float64
	polarLat float64
}

func NewGeohashResolver(buildings []models.Building) *GeohashResolver {
	r := &GeohashResolver{
		cells:    make(map[string][]models.Building),
		linear:   NewLinearResolver(buildings),
		radius:   BuildingMatchRadius,
		polarLat: polarLimit,
	}
	for _, b := range buildings {
		if cell, ok := cellOf(b.Latitude, b.Longitude); ok {
			r.cells[cell] = append(r.cells[cell], b)
		}
	}
	return r
}

func (r *GeohashResolver) Resolve(lat, lon float64) string {
	if math.Abs(lat) > r.polarLat {
		return r.linear.Resolve(lat, lon)
	}

	dLat := geo.MetersToLatDegrees(r.radius)
	dLon := geo.MetersToLonDegrees(r.radius, lat)

	// The box is smaller than a cell, so every cell it overlaps contains one of its corners.
	corners := [][2]float64{
		{lat, lon},
		{lat + dLat, lon + dLon},
		{lat + dLat, lon - dLon},
		{lat - dLat, lon + dLon},
		{lat - dLat, lon - dLon},
	}

	seen := make(map[string]struct{}, len(corners))
	var candidates []models.Building
	for _, p := range corners {
		cell, ok := cellOf(clampLat(p[0]), wrapLon(p[1]))
		if !ok {
			continue
		}
		if _, dup := seen[cell]; dup {
			continue
		}
		seen[cell] = struct{}{}
		candidates = append(candidates, r.cells[cell]...)
	}

	return closest(candidates, lat, lon, r.radius)
}

func cellOf(lat, lon float64) (string, bool) {
	gh := geohash.Encode(lat, lon)
	if len(gh) < geohashPrecision {
		return "", false
	}
	return gh[:geohashPrecision], true
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
