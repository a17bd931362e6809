package compare

// VehicleTier is a discrete transport vehicle class with a fixed payload
// capacity and per-kilometer cost. Rates are flat within a tier — cost does
// not scale with payload, only with distance.
type VehicleTier struct {
	Name       string  `json:"name"`
	CapacityKg float64 `json:"capacity_kg"`
	CostPerKm  float64 `json:"cost_per_km"`
}

// The fixed tier set, ascending by capacity. Rates are rupees per km,
// roughly matching small pickup / standard truck / multi-axle rentals.
var (
	TierLight  = VehicleTier{Name: "light", CapacityKg: 1_500, CostPerKm: 18}
	TierMedium = VehicleTier{Name: "medium", CapacityKg: 5_000, CostPerKm: 32}
	TierHeavy  = VehicleTier{Name: "heavy", CapacityKg: 16_000, CostPerKm: 55}
)

var tiers = []VehicleTier{TierLight, TierMedium, TierHeavy}

// Tiers returns the fixed vehicle tier set, smallest first.
func Tiers() []VehicleTier {
	out := make([]VehicleTier, len(tiers))
	copy(out, tiers)
	return out
}

// SelectVehicle returns the smallest tier whose capacity covers quantityKg.
// Shipments above the heaviest tier's capacity still get the heaviest tier:
// oversized loads use the biggest available vehicle rather than failing.
func SelectVehicle(quantityKg float64) VehicleTier {
	for _, t := range tiers {
		if quantityKg <= t.CapacityKg {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
