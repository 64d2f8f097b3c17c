package normalize

import "strings"

// AmenityResult is the output of the amenity mapper.
type AmenityResult struct {
	HasParking  bool
	HasBalcony  bool
	HasGarage   bool
	IsFurnished bool
	Additional  map[string]bool
}

// amenityTable maps a Croatian (or English) substring to its canonical key.
// The four primary keys populate the named booleans; everything else lands
// in Additional.
var amenityTable = map[string]string{
	"parking":     "parking",
	"parkiralište": "parking",
	"parkirno":    "parking",
	"balkon":      "balcony",
	"balcony":     "balcony",
	"terasa":      "balcony",
	"terrace":     "balcony",
	"garaža":      "garage",
	"garaza":      "garage",
	"garage":      "garage",
	"namješteno":  "furnished",
	"namjesteno":  "furnished",
	"furnished":   "furnished",
	"klima":       "air_conditioning",
	"air conditioning": "air_conditioning",
	"lift":        "elevator",
	"dizalo":      "elevator",
	"elevator":    "elevator",
	"spremište":   "storage",
	"spremiste":   "storage",
	"storage":     "storage",
	"vrt":         "garden",
	"garden":      "garden",
	"bazen":       "pool",
	"pool":        "pool",
}

var unfurnishedMarkers = []string{"nenamješteno", "nenamjesteno", "bez namještaja", "bez namjestaja", "prazan", "unfurnished"}

// Amenities maps raw amenity tokens plus an optional free-text description
// blob into the canonical AmenityResult.
func Amenities(tokens []string, description string) AmenityResult {
	result := AmenityResult{Additional: map[string]bool{}}

	applyTokens(&result, tokens)

	if description != "" {
		descResult := AmenityResult{Additional: map[string]bool{}}
		applyTokens(&descResult, []string{description})
		mergeOR(&result, descResult)
	}

	return result
}

func applyTokens(result *AmenityResult, tokens []string) {
	for _, tok := range tokens {
		lower := strings.ToLower(tok)

		if containsAny(lower, unfurnishedMarkers) {
			result.IsFurnished = false
			return // explicit unfurnished marker short-circuits the rest of this call
		}

		for substr, key := range amenityTable {
			if !strings.Contains(lower, substr) {
				continue
			}
			switch key {
			case "parking":
				result.HasParking = true
			case "balcony":
				result.HasBalcony = true
			case "garage":
				result.HasGarage = true
			case "furnished":
				result.IsFurnished = true
			default:
				result.Additional[key] = true
			}
		}
	}
}

// mergeOR folds src into dst using boolean OR for primaries and key-union
// for the additional map.
func mergeOR(dst *AmenityResult, src AmenityResult) {
	dst.HasParking = dst.HasParking || src.HasParking
	dst.HasBalcony = dst.HasBalcony || src.HasBalcony
	dst.HasGarage = dst.HasGarage || src.HasGarage
	dst.IsFurnished = dst.IsFurnished || src.IsFurnished
	for k, v := range src.Additional {
		if v {
			dst.Additional[k] = true
		}
	}
}
