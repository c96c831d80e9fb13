package estimate

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every chat completion issued by the pipeline.
const SystemPrompt = "You are a construction cost estimation expert for India. Respond only with valid JSON."

// BuildPrompt renders the full estimation instruction for a validated form.
// Pure string construction; identical input produces identical output.
func BuildPrompt(form FormData) string {
	reqs := strings.TrimSpace(form.AdditionalRequirements)
	if reqs == "" {
		reqs = "None"
	}

	var b strings.Builder
	b.WriteString("You are a senior construction cost estimation expert for the Indian market. ")
	b.WriteString("Analyze the project details and produce a bill of materials tailored to the specified stage, quality, city, and area, using current market rates for the given city in INR.\n\n")

	fmt.Fprintf(&b, "Project Details:\n")
	fmt.Fprintf(&b, "- Stage: %s\n", form.Stage)
	fmt.Fprintf(&b, "- Building Type: %s\n", form.BuildingType)
	fmt.Fprintf(&b, "- Total Area: %d sq ft\n", form.TotalAreaSqft)
	fmt.Fprintf(&b, "- Floors: %d\n", form.Floors)
	fmt.Fprintf(&b, "- Quality Level: %s\n", form.Quality)
	fmt.Fprintf(&b, "- Location: %s, India\n", form.City)
	fmt.Fprintf(&b, "- Additional Requirements: %s\n\n", reqs)

	b.WriteString(`Output Requirements — respond ONLY with VALID JSON matching EXACTLY this schema:
{
  "materials": [
    {
      "category": "Material Name",
      "qty": number,
      "unit": "unit type",
      "priceLow": number,
      "priceHigh": number,
      "description": "brief description including grade/specification",
      "priority": "high" | "medium" | "low"
    }
  ],
  "totalLow": number,
  "totalHigh": number,
  "confidence": number,
  "reasoning": "key assumptions"
}

Strict Rules:
`)
	fmt.Fprintf(&b, "1) Use city-specific current Indian market rates for %s. Prices must be material-only (exclude labor) and before GST. Note GST assumptions in reasoning if relevant.\n\n", form.City)

	fmt.Fprintf(&b, "2) Include at least 20-25 detailed material categories relevant to the %s stage only.\n", form.Stage)
	b.WriteString(`   - Cover structural, finishing, MEP, and auxiliary items where applicable.
   - Each category must be unique and non-overlapping (no merging cement & concrete together).
   - Always expand beyond basics to include sub-categories like primers, waterproofing, adhesives, insulation, hardware, fixtures, etc.

`)

	fmt.Fprintf(&b, "3) Quantities must be realistic for %d sq ft and %d floors, using standard thumb rules:\n", form.TotalAreaSqft, form.Floors)
	b.WriteString(`   - Cement bags = 50 kg
   - Steel in kg/tonne
   - Aggregates/sand in m3
   - Bricks in numbers
   - Tiles in m2 with 5-10% wastage
   State key quantity assumptions in reasoning.

`)

	fmt.Fprintf(&b, "4) Match quality level %s:\n", form.Quality)
	b.WriteString(`   - Economy: basic brands/specs, M20 concrete, AAC 600-650 kg/m3, Fe500 steel, CPVC SDR 13.5, FR PVC wires
   - Standard: mid-tier brands/specs, M25 concrete, AAC 550-600 kg/m3, Fe500D steel, CPVC SDR 11, FRLS wires
   - Premium: top-tier brands/specs, M30 concrete, AAC 500-550 kg/m3, Fe550D steel, CPVC SDR 7.4, FRLSH wires
   - Sustainable: eco-certified brands/specs, fly-ash blended concrete, recycled-content steel, low-VOC finishes
   Reflect chosen quality in each description.

5) Each material description must include a clear grade/specification (e.g., "OPC 43 Grade", "TMT Fe500D IS 1786", "M25 ready-mix concrete", "CPVC SDR 11 IS 15778", "Ceramic tile 600x600 mm PEI 4").

6) priceLow/priceHigh: realistic min-max price per unit (two decimals).

7) Calculate totalLow/totalHigh as the sum of (qty x priceLow/priceHigh) per line. Multiply each quantity with its unit price; if cement costs 100 per bag and the quantity is 750 bags, the cement line contributes 750 x 100. Ensure arithmetic accuracy.

8) Set priority based on stage-criticality:
   - Structural materials = high
   - Consumables/additives = medium
   - Optional enhancements = low

9) confidence score [0-1]: reflect data freshness, market volatility, stage clarity, and assumption load.

10) For missing/ambiguous inputs, use conservative industry-standard assumptions:
    - 3.0 m floor height
    - 150-200 mm slab thickness
    - 12-15% wastage for steel/formwork
    - 5-8% wastage for tiles
    List assumptions in reasoning.

Validation Requirements:
- Use Indian standard units (bag, kg, tonne, m3, m2, rmt, nos)
- Valid JSON format only
- Totals must equal the sum of line items along with their quantity
- No additional keys in the JSON structure

Deliver exactly one JSON object as specified.`)

	return b.String()
}
