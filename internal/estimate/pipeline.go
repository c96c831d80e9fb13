package estimate

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vcniti/estimator/internal/estimate"

// Generator runs the estimate pipeline: build the prompt, issue one chat
// completion, extract and normalize the JSON, and fall back to the
// deterministic estimator on any failure. A wizard run never ends without an
// estimate; degraded runs are distinguishable by Result.Source.
type Generator struct {
	caller ChatCaller
	brands BrandTable
	tracer trace.Tracer
}

func NewGenerator(caller ChatCaller, brands BrandTable) *Generator {
	return &Generator{
		caller: caller,
		brands: brands,
		tracer: otel.Tracer(tracerName),
	}
}

// Generate produces an estimate for a validated form. The only error it can
// return is a FormData validation failure; every remote-path failure is
// classified, logged, and answered with the fallback estimate instead.
func (g *Generator) Generate(ctx context.Context, form FormData) (Result, error) {
	if err := form.Validate(); err != nil {
		return Result{}, err
	}

	ctx, span := g.tracer.Start(ctx, "estimate.generate",
		trace.WithAttributes(
			attribute.String("estimate.stage", string(form.Stage)),
			attribute.String("estimate.city", string(form.City)),
			attribute.Int("estimate.area_sqft", form.TotalAreaSqft),
		))
	defer span.End()

	est, err := g.remoteEstimate(ctx, form)
	if err != nil {
		kind := KindOf(err)
		log.Printf("estimate generation degraded to fallback (kind=%s): %v", kind, err)
		span.SetAttributes(
			attribute.String("estimate.source", string(SourceFallback)),
			attribute.String("estimate.failure_kind", string(kind)),
		)
		return Result{
			Estimate:    MockEstimate(form, g.brands),
			Source:      SourceFallback,
			FailureKind: kind,
		}, nil
	}

	span.SetAttributes(attribute.String("estimate.source", string(SourceAI)))
	return Result{Estimate: est, Source: SourceAI}, nil
}

func (g *Generator) remoteEstimate(ctx context.Context, form FormData) (EstimateData, error) {
	prompt := BuildPrompt(form)

	callCtx, callSpan := g.tracer.Start(ctx, "estimate.chat_completion")
	raw, err := g.caller.Complete(callCtx, prompt)
	callSpan.End()
	if err != nil {
		return EstimateData{}, err
	}

	blob, err := ExtractJSON(raw)
	if err != nil {
		return EstimateData{}, err
	}

	_, normSpan := g.tracer.Start(ctx, "estimate.normalize")
	est, err := Normalize(blob, g.brands)
	normSpan.End()
	if err != nil {
		return EstimateData{}, err
	}
	return est, nil
}
