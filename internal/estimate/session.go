package estimate

import (
	"context"
	"fmt"
)

// Wizard steps. The session advances linearly; step 5 submits the form to
// the pipeline and step 6 is the material selection screen.
const (
	StepStage = iota + 1
	StepBuildingType
	StepSize
	StepQuality
	StepLocation
	StepSelection
	stepCount = StepSelection
)

// Session owns one wizard run: the form being filled, the generated material
// list being edited, and the final estimate. Sessions are not safe for
// concurrent use; each run owns its own state.
type Session struct {
	gen       *Generator
	step      int
	form      FormData
	generated *Result
	materials []Material
}

func NewSession(gen *Generator) *Session {
	return &Session{gen: gen, step: StepStage}
}

func (s *Session) Step() int       { return s.step }
func (s *Session) Form() FormData  { return s.form }
func (s *Session) Result() *Result { return s.generated }

// Materials exposes the editable generated list.
func (s *Session) Materials() []Material { return s.materials }

func (s *Session) SetStage(v Stage)               { s.form.Stage = v }
func (s *Session) SetBuildingType(v BuildingType) { s.form.BuildingType = v }
func (s *Session) SetSize(areaSqft, floors int) {
	s.form.TotalAreaSqft = areaSqft
	s.form.Floors = floors
}
func (s *Session) SetQuality(v Quality)               { s.form.Quality = v }
func (s *Session) SetCity(v City)                     { s.form.City = v }
func (s *Session) SetAdditionalRequirements(v string) { s.form.AdditionalRequirements = v }

// Next advances the wizard one step. Leaving the location step runs the
// pipeline; the session keeps its own copy of the generated materials so the
// user can edit them without disturbing the pipeline snapshot.
func (s *Session) Next(ctx context.Context) error {
	if err := s.validateStep(); err != nil {
		return err
	}
	if s.step == StepLocation {
		res, err := s.gen.Generate(ctx, s.form)
		if err != nil {
			return err
		}
		s.generated = &res
		s.materials = make([]Material, len(res.Estimate.Materials))
		copy(s.materials, res.Estimate.Materials)
	}
	if s.step < stepCount {
		s.step++
	}
	return nil
}

// Prev steps backward without discarding answers.
func (s *Session) Prev() {
	if s.step > StepStage {
		s.step--
	}
}

func (s *Session) validateStep() error {
	switch s.step {
	case StepStage:
		if s.form.Stage == "" {
			return fmt.Errorf("select a project stage")
		}
	case StepBuildingType:
		if s.form.BuildingType == "" {
			return fmt.Errorf("select a building type")
		}
	case StepSize:
		if s.form.TotalAreaSqft < MinAreaSqft {
			return fmt.Errorf("total area must be at least %d sq ft", MinAreaSqft)
		}
		if s.form.Floors < 1 || s.form.Floors > MaxFloors {
			return fmt.Errorf("floors must be between 1 and %d", MaxFloors)
		}
	case StepQuality:
		if s.form.Quality == "" {
			return fmt.Errorf("select a quality level")
		}
	case StepLocation:
		return s.form.Validate()
	}
	return nil
}

// Toggle flips a material's selection.
func (s *Session) Toggle(id string) error {
	m, err := s.material(id)
	if err != nil {
		return err
	}
	m.Selected = !m.Selected
	return nil
}

// SetQuantity overwrites a material's quantity.
func (s *Session) SetQuantity(id string, qty float64) error {
	if qty < 0 {
		return fmt.Errorf("quantity must be non-negative")
	}
	m, err := s.material(id)
	if err != nil {
		return err
	}
	m.Qty = qty
	return nil
}

// SetBrand picks one of the material's available brands.
func (s *Session) SetBrand(id, brand string) error {
	m, err := s.material(id)
	if err != nil {
		return err
	}
	for _, b := range m.AvailableBrands {
		if b == brand {
			m.SelectedBrand = brand
			return nil
		}
	}
	return fmt.Errorf("brand %q not available for %s", brand, m.Category)
}

func (s *Session) material(id string) (*Material, error) {
	for i := range s.materials {
		if s.materials[i].ID == id {
			return &s.materials[i], nil
		}
	}
	return nil, fmt.Errorf("no material with id %q", id)
}

// Totals recomputes the selected-materials range for the current edits.
func (s *Session) Totals() Totals {
	return SelectedTotals(s.materials)
}

// Finalize builds the final estimate from the currently selected materials.
// This is a second, separate EstimateData — the generated snapshot is left
// untouched.
func (s *Session) Finalize() (EstimateData, error) {
	var selected []Material
	for _, m := range s.materials {
		if m.Selected {
			selected = append(selected, m)
		}
	}
	if len(selected) == 0 {
		return EstimateData{}, fmt.Errorf("no materials selected")
	}

	totals := SelectedTotals(selected)
	confidence := float64(DefaultConfidence)
	if s.generated != nil {
		confidence = s.generated.Estimate.Confidence
	}
	return EstimateData{
		TotalLow:   totals.Low,
		TotalHigh:  totals.High,
		Confidence: confidence,
		Materials:  selected,
		Reasoning: fmt.Sprintf("Final estimate based on your selected materials and preferred brands. Costs calculated for %s market rates.",
			s.form.City),
	}, nil
}
