package payment

import "testing"

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     int64
	}{
		{"TZS whole units", 25000, "TZS", 25000},
		{"TZS rounds fractions", 25000.4, "TZS", 25000},
		{"UGX whole units", 1500, "UGX", 1500},
		{"KES times hundred", 25.50, "KES", 2550},
		{"USD times hundred", 10.00, "USD", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMinorUnits(tt.amount, tt.currency); got != tt.want {
				t.Errorf("ToMinorUnits(%v, %s) = %d, want %d", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	t.Run("zero-decimal currency round trips", func(t *testing.T) {
		amount := 25000.0
		if got := FromMinorUnits(ToMinorUnits(amount, "TZS"), "TZS"); got != amount {
			t.Errorf("round trip = %v, want %v", got, amount)
		}
	})

	t.Run("two-decimal currency round trips", func(t *testing.T) {
		amount := 25.50
		if got := FromMinorUnits(ToMinorUnits(amount, "KES"), "KES"); got != amount {
			t.Errorf("round trip = %v, want %v", got, amount)
		}
	})
}
