package normalize

import "testing"

func TestPrice_SaleHRK(t *testing.T) {
	r := Price("95000 kn", "sale")
	if r.Currency != "EUR" {
		t.Errorf("expected EUR, got %q", r.Currency)
	}
	if r.PriceEUR != 12609 {
		t.Errorf("expected 12609, got %d", r.PriceEUR)
	}
	if r.IsMonthly {
		t.Error("sale listing should never be monthly")
	}
}

func TestPrice_RentEuroPerMonth(t *testing.T) {
	r := Price("850 €/mj", "rent")
	if r.PriceEUR != 850 {
		t.Errorf("expected 850, got %d", r.PriceEUR)
	}
	if !r.IsMonthly {
		t.Error("expected IsMonthly=true")
	}
}

func TestPrice_RentEuropeanThousands(t *testing.T) {
	r := Price("1.500 EUR mjesečno", "rent")
	if r.PriceEUR != 1500 {
		t.Errorf("expected 1500, got %d", r.PriceEUR)
	}
	if !r.IsMonthly {
		t.Error("expected IsMonthly=true")
	}
}

func TestPrice_USFormat(t *testing.T) {
	r := Price("1,500.50", "sale")
	if r.PriceEUR != 1501 {
		t.Errorf("expected rounded 1501, got %d", r.PriceEUR)
	}
}

func TestPrice_EuropeanDecimal(t *testing.T) {
	r := Price("1.234,56", "sale")
	if r.PriceEUR != 1235 {
		t.Errorf("expected rounded 1235, got %d", r.PriceEUR)
	}
}

func TestPrice_NoNumericToken(t *testing.T) {
	r := Price("na upit", "sale")
	if r.PriceEUR != 0 {
		t.Errorf("expected 0, got %d", r.PriceEUR)
	}
}

func TestPrice_AlwaysEUR(t *testing.T) {
	r := Price("500", "rent")
	if r.Currency != "EUR" {
		t.Errorf("expected currency EUR always, got %q", r.Currency)
	}
}

func TestPrice_Idempotent(t *testing.T) {
	first := Price("95000 kn", "sale")
	// Re-normalizing the already-canonical numeric string must be a no-op.
	second := Price("12609", "sale")
	if first.PriceEUR != second.PriceEUR {
		t.Errorf("normalize(normalize(x)) != normalize(x): %d vs %d", first.PriceEUR, second.PriceEUR)
	}
}
