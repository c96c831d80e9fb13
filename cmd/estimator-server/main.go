package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vcniti/estimator/internal/estimate"
	"github.com/vcniti/estimator/internal/mailer"
	"github.com/vcniti/estimator/internal/observability"
	"github.com/vcniti/estimator/internal/server"
	"github.com/vcniti/estimator/internal/store"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "estimator.db", "sqlite database path")
	provider := flag.String("provider", "openai", "chat provider: openai or anthropic")
	env := flag.String("env", "dev", "deployment environment label")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing := observability.Init(ctx, observability.Config{
		ServiceName: "estimator-server",
		Environment: *env,
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	})
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	caller, err := newCaller(*provider)
	if err != nil {
		log.Fatal(err)
	}

	brands := estimate.DefaultBrandTable()
	generator := estimate.NewGenerator(caller, brands)

	estimates, err := store.Open(*dbPath, brands)
	if err != nil {
		log.Fatal(err)
	}
	defer estimates.Close()

	mail, err := mailer.NewFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(caller, generator, estimates, mail),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("starting estimator server (addr=%s, provider=%s, db=%s)", *addr, *provider, *dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newCaller(provider string) (estimate.ChatCaller, error) {
	switch provider {
	case "openai":
		return estimate.NewOpenAICallerFromEnv()
	case "anthropic":
		return estimate.NewAnthropicCallerFromEnv()
	default:
		return nil, errors.New("unknown provider " + provider)
	}
}
