package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/vcniti/estimator/internal/estimate"
)

const (
	companyName    = "Vcniti Technologies Private Limited"
	companyCIN     = "CIN No. – U47912KA2025PTC205758"
	companyContact = "E-Mail Id – info@vcniti.com, Website - www.vcniti.com, Phone No. – +91 9740059699"
	companyOffice  = "Office: 48, Church St, Haridevpur, Shanthala Nagar, Ashok Nagar, Bengaluru, Karnataka 560001"

	disclaimer = "Note: This estimate is generated using AI analysis and current market rates. " +
		"Actual costs may vary based on market conditions, supplier negotiations, and specific project requirements."
)

// BuildMarkdown renders the estimate report: company header, project
// details, the bill-of-quantities table, and the summary block. The output
// feeds both the API response and the PDF renderer.
func BuildMarkdown(form estimate.FormData, est estimate.EstimateData, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Construction Material Estimate Report\n\n")
	fmt.Fprintf(&b, "**%s**\n\n", companyName)
	fmt.Fprintf(&b, "%s<br>%s<br>%s\n\n", companyCIN, companyContact, companyOffice)

	fmt.Fprintf(&b, "## Project Details\n\n")
	fmt.Fprintf(&b, "- Project Stage: %s\n", title(string(form.Stage)))
	fmt.Fprintf(&b, "- Building Type: %s\n", title(string(form.BuildingType)))
	fmt.Fprintf(&b, "- Total Area: %d sq ft\n", form.TotalAreaSqft)
	fmt.Fprintf(&b, "- Number of Floors: %d\n", form.Floors)
	fmt.Fprintf(&b, "- Quality Level: %s\n", title(string(form.Quality)))
	fmt.Fprintf(&b, "- Location: %s\n", title(string(form.City)))
	fmt.Fprintf(&b, "- Generated on: %s\n\n", generatedAt.Format("02 Jan 2006, 15:04 IST"))

	if strings.TrimSpace(est.Reasoning) != "" {
		fmt.Fprintf(&b, "%s\n\n", est.Reasoning)
	}

	fmt.Fprintf(&b, "## Bill of Quantities\n\n")
	fmt.Fprintf(&b, "| S.No. | Material | Brand | Quantity | Unit Cost Range | Total Cost (Avg) |\n")
	fmt.Fprintf(&b, "| --- | --- | --- | --- | --- | --- |\n")
	for i, m := range est.Materials {
		brand := m.SelectedBrand
		if brand == "" {
			brand = "Generic"
		}
		avgTotal := ((m.PriceLow + m.PriceHigh) / 2) * m.Qty
		fmt.Fprintf(&b, "| %d | %s | %s | %s %s | %s | %s |\n",
			i+1,
			tableCell(m.Category),
			tableCell(brand),
			trimQty(m.Qty), m.Unit,
			FormatINRRange(m.PriceLow, m.PriceHigh),
			FormatINR(avgTotal))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Final Estimate Summary\n\n")
	fmt.Fprintf(&b, "- Total Materials: %d items\n", len(est.Materials))
	fmt.Fprintf(&b, "- Estimated Cost Range: %s\n", FormatINRRange(est.TotalLow, est.TotalHigh))
	fmt.Fprintf(&b, "- AI Confidence Level: %.0f%%\n\n", est.Confidence)

	fmt.Fprintf(&b, "_%s_\n", disclaimer)
	return b.String()
}

func title(s string) string {
	if s == "" {
		return "N/A"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// tableCell keeps material text from breaking the markdown table grid.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func trimQty(qty float64) string {
	if qty == float64(int64(qty)) {
		return fmt.Sprintf("%d", int64(qty))
	}
	return fmt.Sprintf("%.2f", qty)
}
