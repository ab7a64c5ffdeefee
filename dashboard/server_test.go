package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

func newTestLogger() *utils.Logger {
	l := utils.NewLogger()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func sampleRun() *models.Run {
	listings := []*models.Listing{
		{Position: 0, YelpID: "a", Name: "Daikokuya", Address: "327 E 1st St", Rating: 4, ReviewCount: 10,
			Latitude: 34.0, Longitude: -118.0, Price: 15.95, Popularity: 1.2},
		{Position: 1, YelpID: "b", Name: "Tsujita", Address: "2057 Sawtelle Blvd", Rating: 5, ReviewCount: 200,
			Latitude: 34.2, Longitude: -118.4, Price: 14.95, Popularity: 3.15},
	}
	return models.NewRun(listings, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func newTestServer(t *testing.T, run *models.Run) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", run, Options{IngestDuration: 1500 * time.Millisecond}, newTestLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, sampleRun())
	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Ramen For Katie</title>",
		"Ramen for Katie 🍜",
		"Top 50 Ramen Spots in LA",
		"Popularity vs. Price",
		"Ramen Map",
		"Daikokuya",
		"2057 Sawtelle Blvd",
		"3.15",
		"15.95",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
	if strings.Index(body, "Daikokuya") > strings.Index(body, "Tsujita") {
		t.Error("table rows are not in fetch order")
	}
	if !strings.Contains(body, `rel="icon" href="data:image/svg+xml,`) {
		t.Error("page has no inline favicon")
	}
}

func TestIndexTableColumns(t *testing.T) {
	s := newTestServer(t, sampleRun())
	body := get(t, s.Handler(), "/").Body.String()

	head := between(t, body, "<thead>", "</thead>")
	if got := strings.Count(head, "<th>"); got != 4 {
		t.Errorf("header has %d cells; want 4", got)
	}
	for _, col := range []string{"name", "Address", "Popularity", "prices"} {
		if !strings.Contains(head, "<th>"+col+"</th>") {
			t.Errorf("header missing %q", col)
		}
	}

	rows := strings.Split(between(t, body, "<tbody>", "</tbody>"), "</tr>")
	rows = rows[:len(rows)-1]
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}
	for i, row := range rows {
		if got := strings.Count(row, "<td>"); got != 4 {
			t.Errorf("row %d has %d cells; want 4:\n%s", i, got, row)
		}
	}
}

func between(t *testing.T, s, open, close string) string {
	t.Helper()
	start := strings.Index(s, open)
	end := strings.Index(s, close)
	if start < 0 || end < start {
		t.Fatalf("no %s...%s section", open, close)
	}
	return s[start+len(open) : end]
}

func TestListingsEndpoint(t *testing.T) {
	run := sampleRun()
	s := newTestServer(t, run)
	rec := get(t, s.Handler(), "/api/listings")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/listings = %d", rec.Code)
	}

	var resp struct {
		RunID    string                   `json:"run_id"`
		Listings []map[string]interface{} `json:"listings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID != run.ID.String() {
		t.Errorf("run_id = %q; want %q", resp.RunID, run.ID)
	}
	if len(resp.Listings) != 2 {
		t.Fatalf("got %d listings; want 2", len(resp.Listings))
	}
	first := resp.Listings[0]
	if len(first) != 4 {
		t.Errorf("row has %d columns; want 4: %v", len(first), first)
	}
	if first["name"] != "Daikokuya" || first["prices"] != 15.95 || first["Popularity"] != 1.2 {
		t.Errorf("unexpected first row %v", first)
	}
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t, sampleRun())
	rec := get(t, s.Handler(), "/api/chart")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/chart = %d", rec.Code)
	}

	var spec ChartSpec
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec.Mark != "circle" {
		t.Errorf("mark = %q; want circle", spec.Mark)
	}
	if spec.Encoding.X.Field != "Popularity" || spec.Encoding.X.Scale.Domain != [2]float64{2.5, 5} {
		t.Errorf("x encoding = %+v", spec.Encoding.X)
	}
	if spec.Encoding.Y.Field != "prices" || spec.Encoding.Y.Scale.Domain != [2]float64{10, 30} {
		t.Errorf("y encoding = %+v", spec.Encoding.Y)
	}
	if spec.Encoding.Size.Field != "review_count" {
		t.Errorf("size field = %q; want review_count", spec.Encoding.Size.Field)
	}
	if len(spec.Params) != 1 || spec.Params[0].Bind != "scales" || spec.Params[0].Select.Type != "interval" {
		t.Errorf("params = %+v; want one interval selection bound to scales", spec.Params)
	}
	if len(spec.Data.Values) != 2 {
		t.Errorf("chart has %d points; want 2", len(spec.Data.Values))
	}
}

func TestMapEndpoint(t *testing.T) {
	s := newTestServer(t, sampleRun())
	rec := get(t, s.Handler(), "/api/map")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/map = %d", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["mapboxKey"]; ok {
		t.Error("mapboxKey should be omitted when no token is set")
	}

	var spec DeckSpec
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	vs := spec.InitialViewState
	if !approx(vs.Latitude, 34.1) || !approx(vs.Longitude, -118.2) {
		t.Errorf("centre = (%v, %v); want (34.1, -118.2)", vs.Latitude, vs.Longitude)
	}
	if vs.Zoom != 10 || vs.Pitch != 50 {
		t.Errorf("zoom/pitch = %v/%v; want 10/50", vs.Zoom, vs.Pitch)
	}
	if spec.MapStyle != "mapbox://styles/mapbox/light-v9" {
		t.Errorf("mapStyle = %q", spec.MapStyle)
	}
	if len(spec.Layers) != 2 {
		t.Fatalf("got %d layers; want 2", len(spec.Layers))
	}
	if spec.Layers[0].Type != "ScatterplotLayer" || spec.Layers[1].Type != "TextLayer" {
		t.Errorf("layer types = %q, %q", spec.Layers[0].Type, spec.Layers[1].Type)
	}
}

func TestMarkerTooltipNamesMissingField(t *testing.T) {
	spec := NewDeckSpec(sampleRun().Listings, "")
	tip := spec.Layers[0].Tooltip
	if tip == nil || !strings.Contains(tip.HTML, "{price}") {
		t.Fatalf("tooltip = %+v; want literal {price} placeholder", tip)
	}

	row, err := json.Marshal(spec.Layers[0].Data[0])
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(row, &fields); err != nil {
		t.Fatal(err)
	}
	if _, ok := fields["price"]; ok {
		t.Error("listing unexpectedly exposes a price field")
	}
	if _, ok := fields["prices"]; !ok {
		t.Error("listing should expose prices")
	}
}

func TestEmptyRun(t *testing.T) {
	s := newTestServer(t, models.NewRun(nil, time.Now()))

	for _, path := range []string{"/", "/api/listings", "/api/chart", "/api/map", "/healthz", "/metrics"} {
		rec := get(t, s.Handler(), path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}

	spec := NewDeckSpec(nil, "")
	if spec.InitialViewState.Latitude != 0 || spec.InitialViewState.Longitude != 0 {
		t.Errorf("empty centre = %+v; want 0,0", spec.InitialViewState)
	}
	body, err := json.Marshal(NewChartSpec(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"values":[]`) {
		t.Errorf("empty chart data should be an empty array: %s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, sampleRun())
	rec := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"ramen_listings 2",
		"ramen_ingest_duration_seconds 1.5",
		"ramen_popularity_mean",
		"ramen_price_mean",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, sampleRun())
	if rec := get(t, s.Handler(), "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d; want 404", rec.Code)
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0.0.0.0:8501"},
		{":9000", "0.0.0.0:9000"},
		{"127.0.0.1:8080", "127.0.0.1:8080"},
		{"localhost", "localhost:8501"},
		{"  :8501 ", "0.0.0.0:8501"},
	}
	for _, tt := range tests {
		if got := normalizeAddress(tt.in); got != tt.want {
			t.Errorf("normalizeAddress(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	s := newTestServer(t, sampleRun())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-s.Started():
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	if !strings.HasPrefix(s.URL(), "http://127.0.0.1:") {
		t.Errorf("URL = %q", s.URL())
	}
	resp, err := http.Get(s.URL() + "healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
