package normalize

import "testing"

func TestLocation_Abbreviation(t *testing.T) {
	r := Location("ZG, Trešnjevka")
	if r.City != "Zagreb" {
		t.Errorf("expected Zagreb, got %q", r.City)
	}
}

func TestLocation_GradPrefix(t *testing.T) {
	r := Location("Grad Zagreb, Donji grad")
	if r.City != "Zagreb" {
		t.Errorf("expected Zagreb, got %q", r.City)
	}
}

func TestLocation_DistrictOnlyMentionsParentCity(t *testing.T) {
	r := Location("Bačvice")
	if r.City != "Split" {
		t.Errorf("expected Split from district match, got %q", r.City)
	}
}

func TestLocation_UnknownCityTitleCased(t *testing.T) {
	r := Location("nepoznato mjesto, neka ulica")
	if r.City != "Nepoznato Mjesto" {
		t.Errorf("expected title-cased unknown city, got %q", r.City)
	}
	if r.Address != "neka ulica" {
		t.Errorf("expected address remainder, got %q", r.Address)
	}
}

func TestLocation_TableResolvesFoldedAndAbbreviated(t *testing.T) {
	cases := map[string]string{
		"ri":              "Rijeka",
		"Kaštela":         "Kaštela",
		"kastela":         "Kaštela",
		"metkovic":        "Metković",
		"Mali Lošinj":     "Mali Lošinj",
		"biograd na moru": "Biograd na Moru",
		"djakovo":         "Đakovo",
		"Grad Zaprešić":   "Zaprešić",
	}
	for raw, want := range cases {
		if got := Location(raw).City; got != want {
			t.Errorf("Location(%q).City = %q, want %q", raw, got, want)
		}
	}
}

func TestLocation_Idempotent(t *testing.T) {
	first := Location("ZG, Trešnjevka")
	second := Location(first.City)
	if first.City != second.City {
		t.Errorf("normalize(normalize(x)) != normalize(x): %q vs %q", first.City, second.City)
	}
}
