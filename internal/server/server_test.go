package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vcniti/estimator/internal/estimate"
	"github.com/vcniti/estimator/internal/mailer"
	"github.com/vcniti/estimator/internal/store"
)

type stubCaller struct {
	response string
	err      error
}

func (s *stubCaller) Complete(context.Context, string) (string, error) {
	return s.response, s.err
}

type stubMailer struct {
	sent []mailer.Message
	err  error
}

func (s *stubMailer) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubPDF struct {
	markdown string
	err      error
}

func (s *stubPDF) Render(_ context.Context, markdown string) ([]byte, error) {
	s.markdown = markdown
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

type fixture struct {
	handler http.Handler
	caller  *stubCaller
	mail    *stubMailer
	pdf     *stubPDF
	store   *store.EstimateStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	brands := estimate.DefaultBrandTable()
	st, err := store.Open(filepath.Join(t.TempDir(), "estimates.db"), brands)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	caller := &stubCaller{response: `{"materials": [
		{"category": "Cement", "qty": 240, "unit": "bags", "priceLow": 450, "priceHigh": 520, "priority": "high"}
	], "confidence": 92}`}
	mail := &stubMailer{}
	pdf := &stubPDF{}
	return &fixture{
		handler: newServer(caller, estimate.NewGenerator(caller, brands), st, mail, pdf),
		caller:  caller,
		mail:    mail,
		pdf:     pdf,
		store:   st,
	}
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func serverForm() estimate.FormData {
	return estimate.FormData{
		Stage:         estimate.StageStructure,
		BuildingType:  estimate.BuildingResidential,
		TotalAreaSqft: 1000,
		Floors:        2,
		Quality:       estimate.QualityStandard,
		City:          estimate.CityBengaluru,
	}
}

func TestEstimateRelay(t *testing.T) {
	f := newFixture(t)
	f.caller.response = "raw model text"

	rec := postJSON(t, f.handler, "/api/estimate", map[string]string{"prompt": "estimate please"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["content"] != "raw model text" {
		t.Fatalf("content = %q", out["content"])
	}
}

func TestEstimateRelayRequiresPrompt(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.handler, "/api/estimate", map[string]string{"prompt": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEstimateRelayUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.caller.err = errors.New("upstream down")

	rec := postJSON(t, f.handler, "/api/estimate", map[string]string{"prompt": "p"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "AI estimation failed") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestEstimateRelayMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/estimate", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestContactDelivers(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.handler, "/api/contact", map[string]string{
		"firstName": "Asha",
		"lastName":  "Rao",
		"email":     "asha@example.com",
		"subject":   "Hello",
		"message":   "A question about estimates.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0].Email != "asha@example.com" {
		t.Fatalf("sent = %+v", f.mail.sent)
	}
}

func TestContactMissingFields(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.handler, "/api/contact", map[string]string{
		"firstName": "Asha",
		"email":     "  ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Error != "missing required fields" {
		t.Fatalf("error = %q", out.Error)
	}
	want := []string{"lastName", "email", "subject", "message"}
	if !reflect.DeepEqual(out.Fields, want) {
		t.Fatalf("fields = %v, want %v", out.Fields, want)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("incomplete submission must not be delivered")
	}
}

func TestContactDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("sendgrid down")

	rec := postJSON(t, f.handler, "/api/contact", map[string]string{
		"firstName": "Asha",
		"lastName":  "Rao",
		"email":     "asha@example.com",
		"subject":   "Hello",
		"message":   "Hi",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGeneratePersistsAndReturns(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.handler, "/api/generate", serverForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var out struct {
		ID          string                `json:"id"`
		Source      estimate.Source       `json:"source"`
		FailureKind estimate.FailureKind  `json:"failureKind"`
		Estimate    estimate.EstimateData `json:"estimate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.ID == "" {
		t.Fatal("no id assigned")
	}
	if out.Source != estimate.SourceAI {
		t.Fatalf("source = %q", out.Source)
	}
	if len(out.Estimate.Materials) != 1 || out.Estimate.Confidence != 92 {
		t.Fatalf("estimate = %+v", out.Estimate)
	}

	// The persisted record is readable back through the API.
	req := httptest.NewRequest(http.MethodGet, "/api/estimates/"+out.ID, nil)
	getRec := httptest.NewRecorder()
	f.handler.ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRec.Code)
	}
	var stored store.StoredEstimate
	if err := json.Unmarshal(getRec.Body.Bytes(), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.ID != out.ID || stored.Form.City != estimate.CityBengaluru {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestGenerateFallsBackOnUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.caller.err = errors.New("upstream down")

	rec := postJSON(t, f.handler, "/api/generate", serverForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var out struct {
		Source      estimate.Source      `json:"source"`
		FailureKind estimate.FailureKind `json:"failureKind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Source != estimate.SourceFallback || out.FailureKind != estimate.FailureNetwork {
		t.Fatalf("source/kind = %q/%q", out.Source, out.FailureKind)
	}
}

func TestGenerateRejectsInvalidForm(t *testing.T) {
	f := newFixture(t)
	form := serverForm()
	form.Floors = 9

	rec := postJSON(t, f.handler, "/api/generate", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEstimateByIDNotFound(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/estimates/does-not-exist", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEstimateList(t *testing.T) {
	f := newFixture(t)
	postJSON(t, f.handler, "/api/generate", serverForm())
	postJSON(t, f.handler, "/api/generate", serverForm())

	req := httptest.NewRequest(http.MethodGet, "/api/estimates/", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Estimates []store.Summary `json:"estimates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Estimates) != 2 {
		t.Fatalf("got %d summaries, want 2", len(out.Estimates))
	}
}

func TestEstimatePDF(t *testing.T) {
	f := newFixture(t)
	rec := postJSON(t, f.handler, "/api/generate", serverForm())
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/estimates/"+out.ID+"/pdf", nil)
	pdfRec := httptest.NewRecorder()
	f.handler.ServeHTTP(pdfRec, req)
	if pdfRec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", pdfRec.Code, pdfRec.Body)
	}
	if got := pdfRec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content-type = %q", got)
	}
	if got := pdfRec.Header().Get("Content-Disposition"); !strings.Contains(got, "vcniti-construction-estimate.pdf") {
		t.Fatalf("content-disposition = %q", got)
	}
	if !strings.Contains(f.pdf.markdown, "Bill of Quantities") {
		t.Fatal("renderer did not receive the report markdown")
	}
}
