package estimate

import "strings"

// BrandEntry pairs a material keyword with the brands commonly stocked for
// it. Entries are matched in declaration order so lookups stay deterministic.
type BrandEntry struct {
	Key    string
	Brands []string
}

// BrandTable resolves free-text material categories to brand lists. The
// table is injected wherever brands are attached so tests can substitute a
// smaller one.
type BrandTable []BrandEntry

// GenericBrands is returned when no table entry matches a category.
var GenericBrands = []string{"Premium Brand", "Standard Brand", "Economy Brand"}

// DefaultBrandTable returns the built-in Indian-market brand catalog.
func DefaultBrandTable() BrandTable {
	return BrandTable{
		{"cement", []string{"UltraTech", "ACC", "Ambuja", "Shree Cement", "JK Cement", "Dalmia Cement"}},
		{"steel", []string{"Tata Tiscon", "SAIL", "JSW Steel", "Jindal Steel", "RINL", "Kamdhenu"}},
		{"sand", []string{"River Sand", "M-Sand", "Robo Sand", "P Sand", "Crushed Sand"}},
		{"aggregate", []string{"20mm Aggregate", "10mm Aggregate", "Blue Metal", "Crushed Stone", "Jelly"}},
		{"bricks", []string{"Wienerberger", "Fly Ash Bricks", "Clay Bricks", "AAC Blocks", "Solid Blocks"}},
		{"tiles", []string{"Kajaria", "Somany", "Johnson", "Nitco", "H&R Johnson", "RAK Ceramics"}},
		{"paint", []string{"Asian Paints", "Berger Paints", "Nerolac", "Dulux", "Shalimar Paints"}},
		{"electrical", []string{"Havells", "Anchor", "Legrand", "Schneider", "L&T", "Finolex"}},
		{"plumbing", []string{"Jaquar", "Hindware", "Cera", "Parryware", "Kohler", "TOTO"}},
		{"doors", []string{"Tata Pravesh", "Godrej", "Century Ply", "Greenply", "Merino"}},
		{"windows", []string{"Fenesta", "AIS Glasxperts", "REHAU", "Deceuninck", "Schuco"}},
		{"roofing", []string{"Tata BlueScope", "JSW Roofing", "Essar Steel", "Hindalco"}},
		{"insulation", []string{"Rockwool", "Thermax", "Knauf", "Saint-Gobain", "Owens Corning"}},
		{"glass", []string{"Asahi Glass", "Guardian Glass", "Pilkington", "Saint-Gobain"}},
		{"concrete", []string{"Ready Mix Concrete", "ACC Concrete", "UltraTech RMC", "Dalmia RMC"}},
		{"wooden", []string{"Greenply", "Century Ply", "Kitply", "Merino", "Sainik Ply"}},
		{"metal", []string{"Tata Steel", "JSW Steel", "Hindalco", "Vedanta"}},
		{"adhesive", []string{"Fevicol", "Pidilite", "MYK LATICRETE", "CICO", "Weber"}},
		{"waterproof", []string{"Dr. Fixit", "Fosroc", "BASF MasterSeal", "Tremco", "CICO"}},
	}
}

// BrandsFor maps a category label to a non-empty ordered brand list. Each
// whitespace token of the lowercased category is checked against the table;
// a token matches an entry when either string contains the other. The first
// match wins; no match falls through to GenericBrands.
func (t BrandTable) BrandsFor(category string) []string {
	tokens := strings.Fields(strings.ToLower(category))
	for _, token := range tokens {
		for _, entry := range t {
			if strings.Contains(token, entry.Key) || strings.Contains(entry.Key, token) {
				return entry.Brands
			}
		}
	}
	return GenericBrands
}
