// Package addressbook serves the Philippine address directory used by the
// checkout address form. Lookups go through a provider interface so the
// directory source can be swapped; results are cached in redis since PSGC
// data changes rarely.
package addressbook

import "context"

// Place is one directory entry keyed by its PSGC code.
type Place struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Provider supplies the raw directory lookups.
type Provider interface {
	Regions(ctx context.Context) ([]Place, error)
	Provinces(ctx context.Context, regionCode string) ([]Place, error)
	CitiesMunicipalities(ctx context.Context, provinceCode string) ([]Place, error)
	Barangays(ctx context.Context, cityCode string) ([]Place, error)
}

// StaticProvider serves a fixed directory from memory. Used in development
// and tests; production wires an external PSGC source behind the same
// interface.
type StaticProvider struct {
	regions   []Place
	provinces map[string][]Place
	cities    map[string][]Place
	barangays map[string][]Place
}

// NewStaticProvider builds a provider with a small NCR/CALABARZON sample.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		regions: []Place{
			{Code: "130000000", Name: "National Capital Region"},
			{Code: "040000000", Name: "CALABARZON"},
		},
		provinces: map[string][]Place{
			"130000000": {{Code: "133900000", Name: "Metro Manila"}},
			"040000000": {{Code: "043400000", Name: "Laguna"}, {Code: "042100000", Name: "Cavite"}},
		},
		cities: map[string][]Place{
			"133900000": {{Code: "137404000", Name: "Quezon City"}, {Code: "137501000", Name: "Caloocan"}},
			"043400000": {{Code: "043404000", Name: "Calamba"}},
			"042100000": {{Code: "042103000", Name: "Bacoor"}},
		},
		barangays: map[string][]Place{
			"137404000": {{Code: "137404001", Name: "Batasan Hills"}, {Code: "137404002", Name: "Commonwealth"}},
			"137501000": {{Code: "137501001", Name: "Bagong Silang"}},
			"043404000": {{Code: "043404001", Name: "Halang"}},
		},
	}
}

// Regions lists top-level regions.
func (p *StaticProvider) Regions(ctx context.Context) ([]Place, error) {
	return p.regions, nil
}

// Provinces lists provinces under a region.
func (p *StaticProvider) Provinces(ctx context.Context, regionCode string) ([]Place, error) {
	return p.provinces[regionCode], nil
}

// CitiesMunicipalities lists cities and municipalities under a province.
func (p *StaticProvider) CitiesMunicipalities(ctx context.Context, provinceCode string) ([]Place, error) {
	return p.cities[provinceCode], nil
}

// Barangays lists barangays under a city or municipality.
func (p *StaticProvider) Barangays(ctx context.Context, cityCode string) ([]Place, error) {
	return p.barangays[cityCode], nil
}
