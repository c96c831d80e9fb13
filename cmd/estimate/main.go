package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vcniti/estimator/internal/estimate"
	"github.com/vcniti/estimator/internal/report"
)

// One-shot estimate from the command line. With -mock the remote call is
// skipped entirely and the deterministic estimator runs locally.
func main() {
	stage := flag.String("stage", "structure", "project stage: foundation|structure|finishing|interiors")
	buildingType := flag.String("type", "residential", "building type: residential|commercial|mixed")
	area := flag.Int("area", 1000, "total area in sq ft (minimum 100)")
	floors := flag.Int("floors", 1, "number of floors (1-6)")
	quality := flag.String("quality", "standard", "quality level: economy|standard|premium|sustainable")
	city := flag.String("city", "bengaluru", "city: bengaluru|mumbai|delhi|hyderabad|pune|chennai")
	requirements := flag.String("requirements", "", "additional requirements")
	relayURL := flag.String("relay", "", "estimator relay base URL (default: call the provider directly)")
	mock := flag.Bool("mock", false, "skip the remote call and use the deterministic estimator")
	asJSON := flag.Bool("json", false, "print the result as JSON instead of a report")
	flag.Parse()

	form := estimate.FormData{
		Stage:                  estimate.Stage(*stage),
		BuildingType:           estimate.BuildingType(*buildingType),
		TotalAreaSqft:          *area,
		Floors:                 *floors,
		Quality:                estimate.Quality(*quality),
		City:                   estimate.City(*city),
		AdditionalRequirements: *requirements,
	}
	if err := form.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	brands := estimate.DefaultBrandTable()
	var res estimate.Result
	if *mock {
		res = estimate.Result{Estimate: estimate.MockEstimate(form, brands), Source: estimate.SourceFallback}
	} else {
		caller, err := newCaller(*relayURL)
		if err != nil {
			log.Fatal(err)
		}
		res, err = estimate.NewGenerator(caller, brands).Generate(ctx, form)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal(err)
		}
		return
	}

	if res.Source == estimate.SourceFallback && res.FailureKind != "" {
		log.Printf("remote estimation failed (%s); showing fallback estimate", res.FailureKind)
	}
	fmt.Print(report.BuildMarkdown(form, res.Estimate, time.Now()))
}

func newCaller(relayURL string) (estimate.ChatCaller, error) {
	if relayURL != "" {
		return estimate.NewRelayCaller(relayURL), nil
	}
	return estimate.NewOpenAICallerFromEnv()
}
