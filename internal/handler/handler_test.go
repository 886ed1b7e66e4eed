package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nahomWM/Quantum-Qr-Code/internal/analytics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/metrics"
	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
	"github.com/nahomWM/Quantum-Qr-Code/internal/objectstore"
	"github.com/nahomWM/Quantum-Qr-Code/internal/service"
	"github.com/nahomWM/Quantum-Qr-Code/internal/store"
)

// fakeObjects is an in-memory object store for handler tests.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	fail    bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeObjects) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if f.fail {
		return "", fmt.Errorf("%w: store offline", objectstore.ErrUpstream)
	}
	locator := "mem://" + name
	f.mu.Lock()
	f.objects[locator] = body
	f.types[locator] = contentType
	f.mu.Unlock()
	return locator, nil
}

func (f *fakeObjects) Get(ctx context.Context, locator string) (*objectstore.Object, error) {
	if f.fail {
		return nil, fmt.Errorf("%w: store offline", objectstore.ErrUpstream)
	}
	f.mu.Lock()
	body, ok := f.objects[locator]
	contentType := f.types[locator]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s: status 404", objectstore.ErrUpstream, locator)
	}
	return &objectstore.Object{
		Body:        io.NopCloser(bytes.NewReader(body)),
		ContentType: contentType,
		Size:        int64(len(body)),
	}, nil
}

// apiFixture wires the full handler surface over in-memory backends
// with the same routes the server mounts.
type apiFixture struct {
	router   chi.Router
	catalog  *store.Catalog
	objects  *fakeObjects
	recorder *metrics.InMemoryRecorder
	payloads *service.PayloadService
	defs     *service.DefinitionService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := store.NewCatalog(store.NewMemory())
	objects := newFakeObjects()
	recorder := metrics.NewInMemory()

	scanRecorder := analytics.NewRecorder(catalog, logger, recorder)
	gateway := service.NewContentGateway(catalog, objects, scanRecorder, logger, recorder, time.Second)
	defs := service.NewDefinitionService(catalog, logger, recorder)
	payloads := service.NewPayloadService(catalog, objects, logger, recorder)

	base := New()
	scan := NewScanHandler(gateway, recorder, logger)
	analyticsH := NewAnalyticsHandler(catalog, logger)
	defsH := NewDefinitionHandler(defs, logger)
	health := NewHealthHandler(catalog.Store())
	metricsH := NewMetricsHandler(recorder)

	r := chi.NewRouter()
	r.NotFound(base.NotFound)
	r.MethodNotAllowed(base.MethodNotAllowed)
	r.Get("/", base.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", metricsH.Metrics)
	r.Get("/code/{id}", scan.Scan)
	r.Get("/file/{payloadRef}", scan.Download)
	r.Get("/analytics/{id}", analyticsH.Get)
	r.Post("/analytics/batch", analyticsH.Batch)
	r.Route("/definitions", func(r chi.Router) {
		r.Get("/", defsH.List)
		r.Post("/", defsH.Create)
		r.Get("/{id}", defsH.Get)
		r.Delete("/{id}", defsH.Delete)
	})

	return &apiFixture{
		router:   r,
		catalog:  catalog,
		objects:  objects,
		recorder: recorder,
		payloads: payloads,
		defs:     defs,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// seedCode uploads a payload and creates an all-day time definition
// pointing at it, returning the definition id.
func (f *apiFixture) seedCode(t *testing.T, name, mimeType string, data []byte) string {
	t.Helper()

	desc, err := f.payloads.Upload(context.Background(), name, mimeType, data)
	if err != nil {
		t.Fatalf("seed payload: %v", err)
	}

	def, err := f.defs.Create(context.Background(), &model.CodeDefinition{
		Mode: model.ModeTime,
		Configurations: []model.Configuration{
			{PayloadRef: desc.PayloadRef, DisplayName: name, Start: "00:00", End: "23:59"},
		},
	})
	if err != nil {
		t.Fatalf("seed definition: %v", err)
	}
	return def.ID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error, body.Message
}

func TestScan_ServesPayload(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	id := f.seedCode(t, "menu.pdf", "application/pdf", []byte("menu-bytes"))

	rec := f.do(t, http.MethodGet, "/code/"+id, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "menu-bytes" {
		t.Errorf("body = %q, want menu-bytes", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("cache control = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="menu.pdf"` {
		t.Errorf("content disposition = %q", got)
	}
}

func TestScan_UnknownCode(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/code/nope", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code, _ := decodeError(t, rec); code != CodeNotFound {
		t.Errorf("error code = %q, want %q", code, CodeNotFound)
	}
}

func TestScan_NoMatch(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	// Location mode with a region the test request will never carry.
	def, err := f.defs.Create(context.Background(), &model.CodeDefinition{
		Mode: model.ModeLocation,
		Configurations: []model.Configuration{
			{PayloadRef: "ref-x", RegionCode: "JP"},
		},
	})
	if err != nil {
		t.Fatalf("seed definition: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/code/"+def.ID, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code, _ := decodeError(t, rec); code != CodeNoMatch {
		t.Errorf("error code = %q, want %q", code, CodeNoMatch)
	}
}

func TestScan_UpstreamFailure(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	id := f.seedCode(t, "poster.png", "image/png", []byte("png-bytes"))
	f.objects.fail = true

	rec := f.do(t, http.MethodGet, "/code/"+id, nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if code, _ := decodeError(t, rec); code != CodeUpstreamFailure {
		t.Errorf("error code = %q, want %q", code, CodeUpstreamFailure)
	}
}

func TestScan_RecordsMetrics(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	id := f.seedCode(t, "a.txt", "text/plain", []byte("a"))

	f.do(t, http.MethodGet, "/code/"+id, nil)
	f.do(t, http.MethodGet, "/code/unknown", nil)

	snap := f.recorder.Snapshot()
	if snap.ScansByOutcome[metrics.OutcomeServed] != 1 {
		t.Errorf("served = %d, want 1", snap.ScansByOutcome[metrics.OutcomeServed])
	}
	if snap.ScansByOutcome[metrics.OutcomeNotFound] != 1 {
		t.Errorf("not_found = %d, want 1", snap.ScansByOutcome[metrics.OutcomeNotFound])
	}
	if snap.ScanDurationCount == 0 {
		t.Error("expected scan duration observations")
	}
}

func TestDownload_Attachment(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	desc, err := f.payloads.Upload(context.Background(), "flyer.pdf", "application/pdf", []byte("flyer"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/file/"+desc.PayloadRef, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="flyer.pdf"` {
		t.Errorf("content disposition = %q", got)
	}

	rec = f.do(t, http.MethodGet, "/file/missing-ref", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing ref status = %d, want 404", rec.Code)
	}
}

func TestAnalytics_ZeroSummaryWhenAbsent(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/analytics/never-scanned", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summary model.AnalyticsSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("total = %d, want 0", summary.Total)
	}
	if len(summary.ByDeviceClass) != len(model.DeviceClasses) {
		t.Errorf("device buckets = %d, want %d", len(summary.ByDeviceClass), len(model.DeviceClasses))
	}
}

func TestAnalytics_Batch(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	summary := model.NewAnalyticsSummary()
	summary.Total = 7
	if err := f.catalog.PutAnalyticsSummary(context.Background(), "code-a", summary); err != nil {
		t.Fatalf("seed summary: %v", err)
	}

	body := strings.NewReader(`{"ids":["code-a","code-b"]}`)
	rec := f.do(t, http.MethodPost, "/analytics/batch", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var entries []struct {
		ID    string `json:"id"`
		Total int64  `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "code-a" || entries[0].Total != 7 {
		t.Errorf("entry 0 = %+v, want code-a total 7", entries[0])
	}
	if entries[1].ID != "code-b" || entries[1].Total != 0 {
		t.Errorf("entry 1 = %+v, want code-b total 0", entries[1])
	}
}

func TestAnalytics_BatchValidation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{ids:}`},
		{"empty ids", `{"ids":[]}`},
		{"missing ids", `{}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/analytics/batch", strings.NewReader(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if code, _ := decodeError(t, rec); code != CodeValidationFailure {
				t.Errorf("error code = %q, want %q", code, CodeValidationFailure)
			}
		})
	}
}

func TestDefinitions_CRUD(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	body := strings.NewReader(`{
		"mode": "time",
		"configurations": [
			{"payloadRef": "ref-1", "displayName": "Morning", "start": "09:00", "end": "17:00"}
		]
	}`)
	rec := f.do(t, http.MethodPost, "/definitions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var created model.CodeDefinition
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}

	rec = f.do(t, http.MethodGet, "/definitions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/definitions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var list struct {
		Data []model.CodeDefinition `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("list len = %d, want 1", len(list.Data))
	}

	rec = f.do(t, http.MethodDelete, "/definitions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/definitions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestDefinitions_CreateValidation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad mode", `{"mode":"weather","configurations":[{"payloadRef":"r"}]}`},
		{"no configurations", `{"mode":"time","configurations":[]}`},
		{"bad clock", `{"mode":"time","configurations":[{"payloadRef":"r","start":"25:00","end":"17:00"}]}`},
		{"missing region", `{"mode":"location","configurations":[{"payloadRef":"r"}]}`},
		{"not json", `nope`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/definitions", strings.NewReader(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUpload_Multipart(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "brochure.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("pdf-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	// Upload is mounted by the server; mount it here for the test.
	r := chi.NewRouter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r.Post("/upload", NewPayloadHandler(f.payloads, logger, 1<<20).Upload)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var desc model.PayloadDescriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode descriptor: %v", err)
	}
	if desc.PayloadRef == "" {
		t.Error("expected payloadRef to be assigned")
	}
	if desc.OriginalName != "brochure.pdf" {
		t.Errorf("originalName = %q, want brochure.pdf", desc.OriginalName)
	}
	if desc.ByteSize != int64(len("pdf-bytes")) {
		t.Errorf("byteSize = %d, want %d", desc.ByteSize, len("pdf-bytes"))
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	r := chi.NewRouter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r.Post("/upload", NewPayloadHandler(f.payloads, logger, 1<<20).Upload)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	id := f.seedCode(t, "a.txt", "text/plain", []byte("a"))
	f.do(t, http.MethodGet, "/code/"+id, nil)

	rec := f.do(t, http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `qr_scans_total{outcome="served"} 1`) {
		t.Errorf("metrics missing served scan counter:\n%s", body)
	}
	if !strings.Contains(body, "qr_payloads_uploaded_total 1") {
		t.Errorf("metrics missing upload counter:\n%s", body)
	}
}

func TestRootAndNotFound(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("root status = %d, want 200", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/no/such/route", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("not found status = %d, want 404", rec.Code)
	}
	if code, _ := decodeError(t, rec); code != CodeNotFound {
		t.Errorf("error code = %q, want %q", code, CodeNotFound)
	}
}
