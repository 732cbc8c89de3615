package velibdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ProjectionError reports a query-result row that cannot be mapped onto its
// read model: a NULL where the model requires a value, or a scan type
// mismatch. Rows are projected field-by-field, never by reflection.
type ProjectionError struct {
	Model string
	Field string
	Err   error
}

func (e *ProjectionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("projecting %s: field %s: %v", e.Model, e.Field, e.Err)
	}
	return fmt.Sprintf("projecting %s: %v", e.Model, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

var errNullField = fmt.Errorf("unexpected NULL")

// StationRead is the station dimension as served by the API. Only the
// natural key is mandatory; attribute columns are nullable by schema.
type StationRead struct {
	StationCode string   `json:"station_code"`
	Name        *string  `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	StationType *string  `json:"stationtype"`
	Type        *string  `json:"type"`
}

func scanStationRead(rows *sql.Rows) (StationRead, error) {
	var (
		code             sql.NullString
		name, stype, typ sql.NullString
		lat, lon         sql.NullFloat64
	)
	if err := rows.Scan(&code, &name, &lat, &lon, &stype, &typ); err != nil {
		return StationRead{}, &ProjectionError{Model: "station", Err: err}
	}
	if !code.Valid || code.String == "" {
		return StationRead{}, &ProjectionError{Model: "station", Field: "station_code", Err: errNullField}
	}
	return StationRead{
		StationCode: code.String,
		Name:        nullString(name),
		Latitude:    nullFloat(lat),
		Longitude:   nullFloat(lon),
		StationType: nullString(stype),
		Type:        nullString(typ),
	}, nil
}

// VeloRead is the bike dimension as served by the API.
type VeloRead struct {
	VeloName     string `json:"velo_name"`
	BikeElectric *bool  `json:"bikeelectric"`
}

func scanVeloRead(rows *sql.Rows) (VeloRead, error) {
	var (
		name     sql.NullString
		electric sql.NullBool
	)
	if err := rows.Scan(&name, &electric); err != nil {
		return VeloRead{}, &ProjectionError{Model: "velo", Err: err}
	}
	if !name.Valid || name.String == "" {
		return VeloRead{}, &ProjectionError{Model: "velo", Field: "velo_name", Err: errNullField}
	}
	return VeloRead{VeloName: name.String, BikeElectric: nullBool(electric)}, nil
}

// EtatStationRead is one occupancy fact joined with its capture timestamp.
type EtatStationRead struct {
	StationCode      string    `json:"station_code"`
	TimestampCapture time.Time `json:"timestamp_capture"`
	State            *string   `json:"state"`
	NbBike           *int64    `json:"nbbike"`
	NbEbike          *int64    `json:"nbebike"`
	NbFreeDock       *int64    `json:"nbfreedock"`
}

func scanEtatStationRead(rows *sql.Rows) (EtatStationRead, error) {
	var (
		code, state             sql.NullString
		ts                      sql.NullTime
		nbBike, nbEbike, nbFree sql.NullInt64
	)
	if err := rows.Scan(&code, &ts, &state, &nbBike, &nbEbike, &nbFree); err != nil {
		return EtatStationRead{}, &ProjectionError{Model: "etat_station", Err: err}
	}
	if !code.Valid {
		return EtatStationRead{}, &ProjectionError{Model: "etat_station", Field: "station_code", Err: errNullField}
	}
	if !ts.Valid {
		return EtatStationRead{}, &ProjectionError{Model: "etat_station", Field: "timestamp_capture", Err: errNullField}
	}
	return EtatStationRead{
		StationCode:      code.String,
		TimestampCapture: ts.Time,
		State:            nullString(state),
		NbBike:           nullInt(nbBike),
		NbEbike:          nullInt(nbEbike),
		NbFreeDock:       nullInt(nbFree),
	}, nil
}

// Trajet is one inferred trip from the v_trajets view. The view only emits
// complete trips, so every field is mandatory.
type Trajet struct {
	VeloName           string    `json:"velo_name"`
	StationDepartCode  string    `json:"station_depart_code"`
	HeureDepart        time.Time `json:"heure_depart"`
	StationArriveeCode string    `json:"station_arrivee_code"`
	HeureArrivee       time.Time `json:"heure_arrivee"`
	DureeTrajetMinutes float64   `json:"duree_trajet_minutes"`
}

func scanTrajet(rows *sql.Rows) (Trajet, error) {
	var (
		velo, depart, arrivee sql.NullString
		heureDepart, heureArr sql.NullTime
		duree                 sql.NullFloat64
	)
	if err := rows.Scan(&velo, &depart, &heureDepart, &arrivee, &heureArr, &duree); err != nil {
		return Trajet{}, &ProjectionError{Model: "trajet", Err: err}
	}
	for field, valid := range map[string]bool{
		"velo_name":            velo.Valid,
		"station_depart_code":  depart.Valid,
		"heure_depart":         heureDepart.Valid,
		"station_arrivee_code": arrivee.Valid,
		"heure_arrivee":        heureArr.Valid,
		"duree_trajet_minutes": duree.Valid,
	} {
		if !valid {
			return Trajet{}, &ProjectionError{Model: "trajet", Field: field, Err: errNullField}
		}
	}
	return Trajet{
		VeloName:           velo.String,
		StationDepartCode:  depart.String,
		HeureDepart:        heureDepart.Time,
		StationArriveeCode: arrivee.String,
		HeureArrivee:       heureArr.Time,
		DureeTrajetMinutes: duree.Float64,
	}, nil
}

// TrajetStats aggregates trips per route.
type TrajetStats struct {
	StationDepartCode   string  `json:"station_depart_code"`
	StationArriveeCode  string  `json:"station_arrivee_code"`
	NombreTrajets       int64   `json:"nombre_trajets"`
	DureeMoyenneMinutes float64 `json:"duree_moyenne_minutes"`
}

func scanTrajetStats(rows *sql.Rows) (TrajetStats, error) {
	var t TrajetStats
	if err := rows.Scan(&t.StationDepartCode, &t.StationArriveeCode, &t.NombreTrajets, &t.DureeMoyenneMinutes); err != nil {
		return TrajetStats{}, &ProjectionError{Model: "trajet_stats", Err: err}
	}
	return t, nil
}

// TrajetsByDayStats aggregates trips per calendar day.
type TrajetsByDayStats struct {
	Jour                time.Time `json:"jour"`
	NombreTrajets       int64     `json:"nombre_trajets"`
	DureeMoyenneMinutes float64   `json:"duree_moyenne_minutes"`
}

func scanTrajetsByDay(rows *sql.Rows) (TrajetsByDayStats, error) {
	var t TrajetsByDayStats
	if err := rows.Scan(&t.Jour, &t.NombreTrajets, &t.DureeMoyenneMinutes); err != nil {
		return TrajetsByDayStats{}, &ProjectionError{Model: "trajets_by_day", Err: err}
	}
	return t, nil
}

// StationTraffic counts departures or arrivals per station.
type StationTraffic struct {
	StationCode string `json:"station_code"`
	StationName string `json:"station_name"`
	TypeFlux    string `json:"type_flux"`
	NombreFlux  int64  `json:"nombre_flux"`
}

func scanStationTraffic(rows *sql.Rows) (StationTraffic, error) {
	var (
		t    StationTraffic
		name sql.NullString
	)
	if err := rows.Scan(&t.StationCode, &name, &t.TypeFlux, &t.NombreFlux); err != nil {
		return StationTraffic{}, &ProjectionError{Model: "station_traffic", Err: err}
	}
	if name.Valid {
		t.StationName = name.String
	}
	return t, nil
}

// TopVelo ranks bikes by trip count.
type TopVelo struct {
	VeloName          string  `json:"velo_name"`
	NombreTrajets     int64   `json:"nombre_trajets"`
	DureeTotaleHeures float64 `json:"duree_totale_heures"`
}

func scanTopVelo(rows *sql.Rows) (TopVelo, error) {
	var t TopVelo
	if err := rows.Scan(&t.VeloName, &t.NombreTrajets, &t.DureeTotaleHeures); err != nil {
		return TopVelo{}, &ProjectionError{Model: "top_velo", Err: err}
	}
	return t, nil
}

// queryList runs a SELECT and projects every row through scan.
func queryList[T any](ctx context.Context, db *sql.DB, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
