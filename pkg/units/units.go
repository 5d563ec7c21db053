// Package units converts glacier ice volumes to their freshwater equivalent.
package units

const (
	// DefaultIceDensity is the density of glacier ice in kg/m³
	DefaultIceDensity = 900.0

	// DefaultWaterDensity is the density of freshwater in kg/m³
	DefaultWaterDensity = 1000.0

	// LitersPerKm3 converts cubic kilometers to liters
	LitersPerKm3 = 1e12
)

// Densities holds the ice and water densities used in a conversion
type Densities struct {
	Ice   float64
	Water float64
}

// Option overrides one of the default densities
type Option func(*Densities)

// WithIceDensity sets the ice density in kg/m³
func WithIceDensity(rho float64) Option {
	return func(d *Densities) {
		d.Ice = rho
	}
}

// WithWaterDensity sets the water density in kg/m³
func WithWaterDensity(rho float64) Option {
	return func(d *Densities) {
		d.Water = rho
	}
}

// DefaultDensities returns 900 kg/m³ ice and 1000 kg/m³ water
func DefaultDensities() Densities {
	return Densities{Ice: DefaultIceDensity, Water: DefaultWaterDensity}
}

func resolve(opts []Option) Densities {
	d := DefaultDensities()
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// FreshwaterRatio returns the volume of meltwater produced by one unit volume of ice.
// With the default densities this is 0.9.
func FreshwaterRatio(opts ...Option) float64 {
	d := resolve(opts)
	return d.Ice / d.Water
}

// IceToFreshwater converts a volume of glacier ice in km³ to the equivalent volume of
// freshwater in liters. Densities are not validated: zero or negative values propagate
// through the arithmetic unchanged.
func IceToFreshwater(iceKm3 float64, opts ...Option) float64 {
	d := resolve(opts)
	waterKm3 := iceKm3 * d.Ice / d.Water
	return waterKm3 * LitersPerKm3
}
