// Package geo provides offline geocoding for Kazakhstani cities and
// great-circle distance helpers. It never calls external services.
package geo

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/qazfin/fireroute/engine/model"
)

// earthRadiusKM is the radius used for Haversine distances.
const earthRadiusKM = 6371.0

// cityCoords maps normalised city names to WGS84 coordinates.
// Keys must be outputs of Normalize. orb points are (lon, lat).
var cityCoords = map[string]orb.Point{
	"астана":           {71.4491, 51.1694},
	"алматы":           {76.8897, 43.2389},
	"шымкент":          {69.5901, 42.3417},
	"караганда":        {73.0850, 49.8060},
	"усть-каменогорск": {82.6275, 49.9483},
	"семей":            {80.2275, 50.4111},
	"павлодар":         {76.9674, 52.2870},
	"костанай":         {63.6246, 53.2145},
	"кокшетау":         {69.3833, 53.2833},
	"петропавловск":    {69.1620, 54.8753},
	"орал":             {51.3667, 51.2333},
	"атырау":           {51.8833, 47.1167},
	"актау":            {51.1975, 43.6532},
	"актобе":           {57.1660, 50.2839},
	"тараз":            {71.3667, 42.9000},
	"кызылорда":        {65.5092, 44.8528},
}

// aliases maps alternate normalised spellings to canonical keys:
// Latin transliterations, historical names, and language variants.
var aliases = map[string]string{
	"нур-султан": "астана",
	"нурсултан":  "астана",
	"nur-sultan": "астана",
	"nur sultan": "астана",
	"astana":     "астана",

	"almaty":   "алматы",
	"shymkent": "шымкент",

	"oskemen":          "усть-каменогорск",
	"оскемен":          "усть-каменогорск",
	"ust-kamenogorsk":  "усть-каменогорск",
	"ust kamenogorsk":  "усть-каменогорск",
	"усть каменогорск": "усть-каменогорск",
	"устькаменогорск":  "усть-каменогорск",

	"semey":         "семей",
	"karaganda":     "караганда",
	"pavlodar":      "павлодар",
	"kostanay":      "костанай",
	"kokshetau":     "кокшетау",
	"petropavlovsk": "петропавловск",
	"atyrau":        "атырау",
	"aktau":         "актау",
	"aktobe":        "актобе",
	"taraz":         "тараз",
	"kyzylorda":     "кызылорда",

	// Уральск is the official Russian name of Орал.
	"уральск": "орал",
	"oral":    "орал",
	"uralsk":  "орал",
}

var (
	prefixRe     = regexp.MustCompile(`^\s*(г\.|город|city)\s+`)
	trashRe      = regexp.MustCompile(`[^0-9a-zA-Zа-яА-ЯёЁәіңғүұқөһӘІҢҒҮҰҚӨҺ\-\s]`)
	dashSpacesRe = regexp.MustCompile(`\s*-\s*`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// kazakhFold transliterates Kazakh-specific letters into their nearest
// Russian equivalents so variant spellings compare equal.
var kazakhFold = strings.NewReplacer(
	"қ", "к",
	"ө", "о",
	"ү", "у",
	"ұ", "у",
	"ә", "а",
	"ң", "н",
	"ғ", "г",
	"һ", "х",
	"і", "и",
)

// Normalize folds a city or office name into a stable comparable key.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(text))
	s = prefixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "—", "-")
	s = strings.ReplaceAll(s, "–", "-")
	s = trashRe.ReplaceAllString(s, " ")
	s = dashSpacesRe.ReplaceAllString(s, "-")
	s = strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
	s = strings.ReplaceAll(s, "ё", "е")
	return kazakhFold.Replace(s)
}

// Index is the offline city-name geocoder.
type Index struct {
	coords  map[string]orb.Point
	aliases map[string]string
}

// NewIndex builds the geocoder over the built-in city table.
func NewIndex() *Index {
	return &Index{coords: cityCoords, aliases: aliases}
}

// Geocode resolves a city (optionally disambiguated by region) to
// coordinates. Lookup order: exact key, alias, substring match in either
// direction. Returns false when the city is unknown.
func (idx *Index) Geocode(city, region string) (orb.Point, bool) {
	if pt, ok := idx.lookup(city); ok {
		return pt, true
	}
	if region != "" {
		return idx.lookup(region)
	}
	return orb.Point{}, false
}

func (idx *Index) lookup(name string) (orb.Point, bool) {
	key := Normalize(name)
	if key == "" {
		return orb.Point{}, false
	}
	if pt, ok := idx.coords[key]; ok {
		return pt, true
	}
	if canonical, ok := idx.aliases[key]; ok {
		if pt, ok := idx.coords[canonical]; ok {
			return pt, true
		}
	}
	// Conservative substring fallback, walked in lexical order so the
	// first hit is deterministic.
	for _, known := range idx.sortedKeys() {
		if strings.Contains(known, key) || strings.Contains(key, known) {
			return idx.coords[known], true
		}
	}
	return orb.Point{}, false
}

func (idx *Index) sortedKeys() []string {
	keys := make([]string, 0, len(idx.coords))
	for k := range idx.coords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Distance returns the great-circle Haversine distance between two points
// in kilometres.
func Distance(a, b orb.Point) float64 {
	phi1 := radians(a.Lat())
	phi2 := radians(b.Lat())
	dPhi := radians(b.Lat() - a.Lat())
	dLambda := radians(b.Lon() - a.Lon())

	h := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// OfficeDistance pairs an office name with its distance from a reference
// point.
type OfficeDistance struct {
	Name string
	KM   float64
}

// RankOfficesByDistance orders offices by ascending distance from the given
// point. Offices without known coordinates are skipped. Ties break on name.
func (idx *Index) RankOfficesByDistance(from orb.Point, offices []model.Office) []OfficeDistance {
	ranked := make([]OfficeDistance, 0, len(offices))
	for _, office := range offices {
		pt, ok := idx.OfficeCoords(office)
		if !ok {
			continue
		}
		ranked = append(ranked, OfficeDistance{Name: office.Name, KM: Distance(from, pt)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].KM != ranked[j].KM {
			return ranked[i].KM < ranked[j].KM
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// OfficeCoords resolves office coordinates: explicit values first, then the
// office name through the geocoder.
func (idx *Index) OfficeCoords(office model.Office) (orb.Point, bool) {
	if office.Lat != nil && office.Lon != nil {
		return orb.Point{*office.Lon, *office.Lat}, true
	}
	return idx.Geocode(office.Name, "")
}

// Round2 rounds a distance to two decimals, the precision reported in
// assignments.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}
