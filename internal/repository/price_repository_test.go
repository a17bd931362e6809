package repository

import (
	"testing"

	"github.com/kisanlink/agrimandi/internal/model"
)

func TestPricePerKg(t *testing.T) {
	tests := []struct {
		name  string
		modal float64
		unit  model.PriceUnit
		want  float64
	}{
		{"per quintal divides by 100", 2250, model.UnitPerQuintal, 22.50},
		{"per quintal fractional", 2125.5, model.UnitPerQuintal, 21.255},
		{"per kg passthrough", 22.50, model.UnitPerKg, 22.50},
		{"zero modal", 0, model.UnitPerQuintal, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PricePerKg(tt.modal, tt.unit)
			if got != tt.want {
				t.Errorf("PricePerKg(%v, %q) = %v, want %v", tt.modal, tt.unit, got, tt.want)
			}
		})
	}
}
