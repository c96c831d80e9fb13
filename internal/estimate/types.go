package estimate

import "fmt"

const (
	// MinAreaSqft is the smallest project the predictor accepts.
	MinAreaSqft = 100
	// MaxFloors caps the floor selector.
	MaxFloors = 6

	// DefaultConfidence is used when the model omits or mangles the
	// confidence field.
	DefaultConfidence = 85
	// FallbackConfidence is the fixed confidence of a synthesized estimate.
	FallbackConfidence = 88
)

// Stage is the construction phase the user is budgeting for.
type Stage string

const (
	StageFoundation Stage = "foundation"
	StageStructure  Stage = "structure"
	StageFinishing  Stage = "finishing"
	StageInteriors  Stage = "interiors"
)

// BuildingType classifies the project.
type BuildingType string

const (
	BuildingResidential BuildingType = "residential"
	BuildingCommercial  BuildingType = "commercial"
	BuildingMixed       BuildingType = "mixed"
)

// Quality selects the material-grade tier.
type Quality string

const (
	QualityEconomy     Quality = "economy"
	QualityStandard    Quality = "standard"
	QualityPremium     Quality = "premium"
	QualitySustainable Quality = "sustainable"
)

// City is one of the supported Indian metros.
type City string

const (
	CityBengaluru City = "bengaluru"
	CityMumbai    City = "mumbai"
	CityDelhi     City = "delhi"
	CityHyderabad City = "hyderabad"
	CityPune      City = "pune"
	CityChennai   City = "chennai"
)

// FormData is the project descriptor collected by the predictor wizard.
// It is immutable once handed to the pipeline.
type FormData struct {
	Stage                  Stage        `json:"stage"`
	BuildingType           BuildingType `json:"buildingType"`
	TotalAreaSqft          int          `json:"totalAreaSqft"`
	Floors                 int          `json:"floors"`
	Quality                Quality      `json:"quality"`
	City                   City         `json:"city"`
	AdditionalRequirements string       `json:"additionalRequirements,omitempty"`
}

// Validate enforces the enum and range constraints the wizard guarantees.
func (f FormData) Validate() error {
	switch f.Stage {
	case StageFoundation, StageStructure, StageFinishing, StageInteriors:
	default:
		return fmt.Errorf("invalid stage %q", f.Stage)
	}
	switch f.BuildingType {
	case BuildingResidential, BuildingCommercial, BuildingMixed:
	default:
		return fmt.Errorf("invalid building type %q", f.BuildingType)
	}
	if f.TotalAreaSqft < MinAreaSqft {
		return fmt.Errorf("total area must be at least %d sq ft, got %d", MinAreaSqft, f.TotalAreaSqft)
	}
	if f.Floors < 1 || f.Floors > MaxFloors {
		return fmt.Errorf("floors must be between 1 and %d, got %d", MaxFloors, f.Floors)
	}
	switch f.Quality {
	case QualityEconomy, QualityStandard, QualityPremium, QualitySustainable:
	default:
		return fmt.Errorf("invalid quality %q", f.Quality)
	}
	switch f.City {
	case CityBengaluru, CityMumbai, CityDelhi, CityHyderabad, CityPune, CityChennai:
	default:
		return fmt.Errorf("invalid city %q", f.City)
	}
	return nil
}

// Material is one bill-of-quantities line item. The selection step mutates
// Qty, Selected, and SelectedBrand in place; the pipeline never touches a
// material after construction.
type Material struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	Qty             float64  `json:"qty"`
	Unit            string   `json:"unit"`
	PriceLow        float64  `json:"priceLow"`
	PriceHigh       float64  `json:"priceHigh"`
	Selected        bool     `json:"selected"`
	AvailableBrands []string `json:"availableBrands"`
	SelectedBrand   string   `json:"selectedBrand"`
	Description     string   `json:"description,omitempty"`
}

// LineTotals returns the low/high cost contribution of this material.
func (m Material) LineTotals() (low, high float64) {
	return m.PriceLow * m.Qty, m.PriceHigh * m.Qty
}

// EstimateData is a normalized estimate. Totals are a snapshot of the
// selected-materials sum at construction time; callers recompute via
// SelectedTotals after mutating the list.
type EstimateData struct {
	TotalLow   float64    `json:"totalLow"`
	TotalHigh  float64    `json:"totalHigh"`
	Confidence float64    `json:"confidence"`
	Materials  []Material `json:"materials"`
	Reasoning  string     `json:"reasoning,omitempty"`
}

// Totals is a low/high cost range.
type Totals struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Source tags how an estimate was produced.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result is the pipeline output. FailureKind is empty on the AI path and
// records which boundary failed when the fallback produced the estimate.
type Result struct {
	Estimate    EstimateData `json:"estimate"`
	Source      Source       `json:"source"`
	FailureKind FailureKind  `json:"failureKind,omitempty"`
}
