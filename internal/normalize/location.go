package normalize

import (
	"strings"
	"unicode"
)

// LocationResult is the output of the location normalizer.
type LocationResult struct {
	City    string
	Address string
	Region  string
}

var cityPrefixes = []string{"grad ", "općina ", "opcina ", "city of "}

// cityTable maps a lowercased, diacritic-stripped or abbreviated form to
// its canonical city name. Lookups go through diacriticFold, so every key
// is the folded form; both "šibenik" and "sibenik" resolve via "sibenik".
var cityTable = map[string]string{
	// Abbreviations and plate codes that show up in listing titles.
	"zg":  "Zagreb",
	"st":  "Split",
	"ri":  "Rijeka",
	"os":  "Osijek",
	"zd":  "Zadar",
	"pu":  "Pula",
	"ka":  "Karlovac",
	"vz":  "Varaždin",
	"sb":  "Slavonski Brod",
	"dbk": "Dubrovnik",
	"vg":  "Velika Gorica",
	"ck":  "Čakovec",

	// The four largest cities and county seats.
	"zagreb":         "Zagreb",
	"split":          "Split",
	"rijeka":         "Rijeka",
	"osijek":         "Osijek",
	"zadar":          "Zadar",
	"velika gorica":  "Velika Gorica",
	"slavonski brod": "Slavonski Brod",
	"pula":           "Pula",
	"karlovac":       "Karlovac",
	"sisak":          "Sisak",
	"varazdin":       "Varaždin",
	"sibenik":        "Šibenik",
	"dubrovnik":      "Dubrovnik",
	"bjelovar":       "Bjelovar",
	"vinkovci":       "Vinkovci",
	"koprivnica":     "Koprivnica",
	"vukovar":        "Vukovar",
	"cakovec":        "Čakovec",
	"pozega":         "Požega",
	"virovitica":     "Virovitica",
	"krapina":        "Krapina",
	"gospic":         "Gospić",
	"pazin":          "Pazin",

	// Zagreb ring and the northern interior.
	"samobor":       "Samobor",
	"zapresic":      "Zaprešić",
	"sveta nedelja": "Sveta Nedelja",
	"dugo selo":     "Dugo Selo",
	"ivanic-grad":   "Ivanić-Grad",
	"ivanic grad":   "Ivanić-Grad",
	"jastrebarsko":  "Jastrebarsko",
	"vrbovec":       "Vrbovec",
	"zabok":         "Zabok",
	"oroslavje":     "Oroslavje",
	"donja stubica": "Donja Stubica",
	"zlatar":        "Zlatar",
	"pregrada":      "Pregrada",
	"klanjec":       "Klanjec",
	"ivanec":        "Ivanec",
	"ludbreg":       "Ludbreg",
	"lepoglava":     "Lepoglava",
	"prelog":        "Prelog",
	"krizevci":      "Križevci",
	"cazma":         "Čazma",
	"garesnica":     "Garešnica",
	"daruvar":       "Daruvar",
	"kutina":        "Kutina",
	"novska":        "Novska",
	"petrinja":      "Petrinja",
	"glina":         "Glina",
	"duga resa":     "Duga Resa",
	"ogulin":        "Ogulin",
	"slunj":         "Slunj",
	"otocac":        "Otočac",

	// Slavonia and the east.
	"dakovo":         "Đakovo",
	"djakovo":        "Đakovo",
	"nasice":         "Našice",
	"zupanja":        "Županja",
	"ilok":           "Ilok",
	"belisce":        "Belišće",
	"valpovo":        "Valpovo",
	"donji miholjac": "Donji Miholjac",
	"orahovica":      "Orahovica",
	"slatina":        "Slatina",
	"nova gradiska":  "Nova Gradiška",
	"pakrac":         "Pakrac",
	"lipik":          "Lipik",
	"kutjevo":        "Kutjevo",
	"pleternica":     "Pleternica",

	// Istria and Kvarner.
	"porec":            "Poreč",
	"rovinj":           "Rovinj",
	"umag":             "Umag",
	"novigrad":         "Novigrad",
	"buje":             "Buje",
	"buzet":            "Buzet",
	"labin":            "Labin",
	"vodnjan":          "Vodnjan",
	"medulin":          "Medulin",
	"fazana":           "Fažana",
	"vrsar":            "Vrsar",
	"opatija":          "Opatija",
	"kastav":           "Kastav",
	"bakar":            "Bakar",
	"kraljevica":       "Kraljevica",
	"crikvenica":       "Crikvenica",
	"novi vinodolski":  "Novi Vinodolski",
	"senj":             "Senj",
	"krk":              "Krk",
	"rab":              "Rab",
	"cres":             "Cres",
	"mali losinj":      "Mali Lošinj",

	// Dalmatia.
	"kastela":         "Kaštela",
	"solin":           "Solin",
	"trogir":          "Trogir",
	"omis":            "Omiš",
	"makarska":        "Makarska",
	"sinj":            "Sinj",
	"imotski":         "Imotski",
	"vrgorac":         "Vrgorac",
	"knin":            "Knin",
	"drnis":           "Drniš",
	"skradin":         "Skradin",
	"vodice":          "Vodice",
	"biograd":         "Biograd na Moru",
	"biograd na moru": "Biograd na Moru",
	"benkovac":        "Benkovac",
	"obrovac":         "Obrovac",
	"nin":             "Nin",
	"pag":             "Pag",
	"novalja":         "Novalja",
	"metkovic":        "Metković",
	"ploce":           "Ploče",
	"opuzen":          "Opuzen",
	"hvar":            "Hvar",
	"stari grad":      "Stari Grad",
	"supetar":         "Supetar",
	"korcula":         "Korčula",
}

// districtsByCity lists known district names per city; a district hit pins
// City to the parent city and leaves the remainder as Address.
var districtsByCity = map[string][]string{
	"Zagreb": {"trešnjevka", "trnje", "maksimir", "dubrava", "novi zagreb", "črnomerec", "donji grad", "gornji grad"},
	"Split":  {"bačvice", "meje", "lučac", "varoš", "gripe", "spinut"},
}

// Location normalizes a raw location string.
func Location(raw string) LocationResult {
	parts := splitLocation(raw)
	if len(parts) == 0 {
		return LocationResult{}
	}

	for i, p := range parts {
		parts[i] = stripCityPrefix(strings.TrimSpace(p))
	}

	first := parts[0]
	key := diacriticFold(strings.ToLower(first))

	if canonical, ok := cityTable[key]; ok {
		return LocationResult{
			City:    canonical,
			Address: strings.Join(parts[1:], ", "),
		}
	}

	// District check: any part matching a known district for Zagreb/Split
	// pins the city even if the literal city name wasn't present.
	for city, districts := range districtsByCity {
		for _, p := range parts {
			folded := diacriticFold(strings.ToLower(p))
			for _, d := range districts {
				if strings.Contains(folded, diacriticFold(d)) {
					return LocationResult{City: city, Address: joinOthers(parts, p)}
				}
			}
		}
	}

	// Unknown city: title-case each word of the first part; remainder is address.
	return LocationResult{
		City:    titleCase(first),
		Address: strings.Join(parts[1:], ", "),
	}
}

func splitLocation(raw string) []string {
	raw = strings.NewReplacer("–", ",", "-", ",").Replace(raw)
	rawParts := strings.Split(raw, ",")
	var out []string
	for _, p := range rawParts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stripCityPrefix(s string) string {
	lower := strings.ToLower(s)
	for _, prefix := range cityPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return s[len(prefix):]
		}
	}
	return s
}

func joinOthers(parts []string, exclude string) string {
	var out []string
	for _, p := range parts {
		if p != exclude {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
			for j := 1; j < len(r); j++ {
				r[j] = unicode.ToLower(r[j])
			}
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// diacriticFold strips the common Croatian diacritics so table lookups match
// both "šibenik" and "sibenik".
func diacriticFold(s string) string {
	replacer := strings.NewReplacer(
		"č", "c", "ć", "c", "đ", "d", "š", "s", "ž", "z",
	)
	return replacer.Replace(s)
}
