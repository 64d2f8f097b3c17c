package filters

// vocabulary.go holds the fixed Croatian/English vocabulary table the
// extraction prompt encodes: property types, listing types, price units
// (including the legacy HRK rate), room phrases, and amenity aliases.
// Deliberately separate from internal/normalize's equivalent tables: this
// table informs the LLM prompt, theirs normalizes already-scraped text.

var propertyTypeVocabulary = map[string]string{
	"stan":       "apartment",
	"apartman":   "apartment",
	"kuća":       "house",
	"kuca":       "house",
	"vila":       "house",
	"ured":       "office",
	"poslovni":   "office",
	"zemljište":  "land",
	"zemljiste":  "land",
	"parcela":    "land",
	"apartment":  "apartment",
	"house":      "house",
	"office":     "office",
	"land":       "land",
}

var listingTypeVocabulary = map[string]string{
	"najam":     "rent",
	"najmu":     "rent",
	"iznajmljivanje": "rent",
	"zakup":     "rent",
	"prodaja":   "sale",
	"prodaju":   "sale",
	"kupnja":    "sale",
	"rent":      "rent",
	"sale":      "sale",
	"buy":       "sale",
}

var priceUnitVocabulary = []string{"€", "eur", "eura", "kn", "hrk", "/mj", "mjesečno", "mjesecno"}

var roomPhraseVocabulary = map[string]int{
	"jednosoban":   1,
	"garsonijera":  1,
	"dvosoban":     2,
	"trosoban":     3,
	"četverosoban": 4,
	"cetverosoban": 4,
	"petosoban":    5,
}

var amenityAliasVocabulary = map[string]string{
	"parking":      "parking",
	"garaža":       "garage",
	"garaza":       "garage",
	"balkon":       "balcony",
	"terasa":       "balcony",
	"namješteno":   "furnished",
	"namjesteno":   "furnished",
}

// croatianKeywords and englishKeywords back the language-detection
// fallback: count hits of each, mixed if both > 0.
var croatianKeywords = []string{"stan", "kuća", "najam", "prodaja", "sobe", "soba", "zagreb", "split", "za", "u", "do", "tražim", "trazim"}
var englishKeywords = []string{"apartment", "house", "rent", "sale", "rooms", "room", "for", "in", "up", "to", "looking", "budget"}
