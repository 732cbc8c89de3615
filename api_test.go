package velibdata

import (
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Karim-DataScience/JeVelibererLaData/config"
	"github.com/Karim-DataScience/JeVelibererLaData/internal/sqlstub"
)

func newTestAPI() (*API, *sqlstub.Conn) {
	db, conn := sqlstub.OpenDB()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAPI(db, config.APIConfig{Port: 8000, KeySecret: "s3cr3t"}, log), conn
}

func doRequest(a *API, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	a.Routes().ServeHTTP(rr, req)
	return rr
}

func TestListStations(t *testing.T) {
	api, conn := newTestAPI()
	conn.On("FROM station", []string{"station_code", "name", "latitude", "longitude", "stationtype", "type"},
		[]driver.Value{"16107", "Test", 48.8, 2.3, "STANDARD", "yes"},
		[]driver.Value{"16108", nil, nil, nil, nil, nil})

	rr := doRequest(api, http.MethodGet, "/api/v1/dimensions/stations", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var stations []StationRead
	if err := json.Unmarshal(rr.Body.Bytes(), &stations); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	if stations[0].StationCode != "16107" || *stations[0].Name != "Test" {
		t.Errorf("first station = %+v", stations[0])
	}
	if stations[1].Name != nil {
		t.Errorf("NULL name must project to null, got %v", *stations[1].Name)
	}
}

func TestListStations_TypeFilter(t *testing.T) {
	api, conn := newTestAPI()
	rr := doRequest(api, http.MethodGet, "/api/v1/dimensions/stations?station_type=PLUS", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	q := conn.Queries[0]
	if !strings.Contains(q.Query, "WHERE type = $1") {
		t.Errorf("filter missing from query: %s", q.Query)
	}
	if len(q.Args) != 1 || q.Args[0].Value != "PLUS" {
		t.Errorf("filter arg = %+v", q.Args)
	}
}

func TestGetStation_NotFound(t *testing.T) {
	api, _ := newTestAPI()
	rr := doRequest(api, http.MethodGet, "/api/v1/dimensions/stations/99999", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestListStations_ProjectionError(t *testing.T) {
	api, conn := newTestAPI()
	conn.On("FROM station", []string{"station_code", "name", "latitude", "longitude", "stationtype", "type"},
		[]driver.Value{nil, nil, nil, nil, nil, nil})

	rr := doRequest(api, http.MethodGet, "/api/v1/dimensions/stations", "", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for NULL natural key", rr.Code)
	}
}

func TestUpsertStation_Auth(t *testing.T) {
	body := `{"station_code": "16107", "name": "Test", "latitude": 48.8, "longitude": 2.3, "type": "yes"}`
	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{name: "missing key", header: nil, want: http.StatusUnauthorized},
		{name: "wrong key", header: map[string]string{"X-API-Key": "nope"}, want: http.StatusUnauthorized},
		{name: "valid key", header: map[string]string{"X-API-Key": "s3cr3t"}, want: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, conn := newTestAPI()
			rr := doRequest(api, http.MethodPost, "/api/v1/dimensions/stations", body, tt.header)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusCreated && len(conn.Execs) != 1 {
				t.Errorf("expected one upsert exec, got %d", len(conn.Execs))
			}
			if tt.want == http.StatusUnauthorized && len(conn.Execs) != 0 {
				t.Errorf("unauthorized request must not touch the database")
			}
		})
	}
}

func TestUpsertStation_UnconfiguredSecretRejectsAll(t *testing.T) {
	db, _ := sqlstub.OpenDB()
	log := logrus.New()
	log.SetOutput(io.Discard)
	api := NewAPI(db, config.APIConfig{Port: 8000}, log)

	rr := doRequest(api, http.MethodPost, "/api/v1/dimensions/stations",
		`{"station_code": "1"}`, map[string]string{"X-API-Key": ""})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when no secret is configured", rr.Code)
	}
}

func TestListVelos_ElectricFilter(t *testing.T) {
	api, conn := newTestAPI()
	conn.On("FROM velo", []string{"velo_name", "bikeelectric"},
		[]driver.Value{"BIKE1", true})

	rr := doRequest(api, http.MethodGet, "/api/v1/dimensions/velos?electric=true", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(conn.Queries[0].Query, "WHERE bikeelectric = $1") {
		t.Errorf("electric filter missing: %s", conn.Queries[0].Query)
	}

	rr = doRequest(api, http.MethodGet, "/api/v1/dimensions/velos?electric=maybe", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad boolean", rr.Code)
	}
}

func TestListEtats(t *testing.T) {
	api, conn := newTestAPI()
	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	conn.On("FROM etat_station", []string{"station_code", "timestamp_capture", "state", "nbbike", "nbebike", "nbfreedock"},
		[]driver.Value{"16107", ts, "ok", int64(1), int64(1), int64(5)})

	rr := doRequest(api, http.MethodGet, "/api/v1/facts/etats?station_code=16107", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var etats []EtatStationRead
	if err := json.Unmarshal(rr.Body.Bytes(), &etats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(etats) != 1 || etats[0].StationCode != "16107" || !etats[0].TimestampCapture.Equal(ts) {
		t.Errorf("etats = %+v", etats)
	}

	rr = doRequest(api, http.MethodGet, "/api/v1/facts/etats?limit=-3", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad limit", rr.Code)
	}

	rr = doRequest(api, http.MethodGet, "/api/v1/facts/etats?limit=999999", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for limit over the ceiling", rr.Code)
	}
}

func TestListTrajets(t *testing.T) {
	api, conn := newTestAPI()
	dep := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	arr := dep.Add(12 * time.Minute)
	conn.On("FROM v_trajets", []string{"velo_name", "station_depart_code", "heure_depart", "station_arrivee_code", "heure_arrivee", "duree_trajet_minutes"},
		[]driver.Value{"BIKE1", "16107", dep, "16109", arr, 12.0})

	rr := doRequest(api, http.MethodGet, "/api/v1/analysis/trajets?velo_name=BIKE1", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var trajets []Trajet
	if err := json.Unmarshal(rr.Body.Bytes(), &trajets); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(trajets) != 1 {
		t.Fatalf("expected 1 trajet, got %d", len(trajets))
	}
	tr := trajets[0]
	if tr.VeloName != "BIKE1" || tr.StationDepartCode != "16107" || tr.StationArriveeCode != "16109" {
		t.Errorf("trajet = %+v", tr)
	}
	if tr.DureeTrajetMinutes != 12.0 {
		t.Errorf("duree = %v, want 12", tr.DureeTrajetMinutes)
	}
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI()
	rr := doRequest(api, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		input   string
		def     int
		max     int
		want    int
		wantErr bool
	}{
		{"", 100, 1000, 100, false},
		{"5", 100, 1000, 5, false},
		{" 25 ", 10, 1000, 25, false},
		{"1000", 100, 1000, 1000, false},
		{"1001", 100, 1000, 0, true},
		{"0", 100, 1000, 0, true},
		{"-1", 100, 1000, 0, true},
		{"abc", 100, 1000, 0, true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.input, tt.def, tt.max)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLimit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
