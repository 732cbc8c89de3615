package velibdata

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
)

const stationColumns = `station_code, name, latitude, longitude, stationtype, type`

func (a *API) handleListStations(w http.ResponseWriter, r *http.Request) {
	query := `SELECT ` + stationColumns + ` FROM station`
	var args []any
	if st := r.URL.Query().Get("station_type"); st != "" {
		query += ` WHERE type = $1`
		args = append(args, st)
	}
	query += ` ORDER BY station_code`

	stations, err := queryList(r.Context(), a.db, scanStationRead, query, args...)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

func (a *API) handleGetStation(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	stations, err := queryList(r.Context(), a.db, scanStationRead,
		`SELECT `+stationColumns+` FROM station WHERE station_code = $1`, code)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	if len(stations) == 0 {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}
	writeJSON(w, http.StatusOK, stations[0])
}

type stationUpsertRequest struct {
	StationCode string   `json:"station_code"`
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Type        string   `json:"type"`
}

// handleUpsertStation is the one write endpoint that updates a dimension in
// place; unlike the importer's first-writer-wins inserts, an explicit POST
// is an operator correction and overwrites.
func (a *API) handleUpsertStation(w http.ResponseWriter, r *http.Request) {
	var req stationUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StationCode == "" {
		writeError(w, http.StatusBadRequest, "station_code is required")
		return
	}
	_, err := a.db.ExecContext(r.Context(), `
		INSERT INTO station (station_code, name, latitude, longitude, type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (station_code) DO UPDATE
		SET name = EXCLUDED.name, latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude, type = EXCLUDED.type`,
		req.StationCode, req.Name, req.Latitude, req.Longitude, req.Type)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "station " + req.StationCode + " created or updated",
	})
}

func (a *API) handleDeleteStation(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	res, err := a.db.ExecContext(r.Context(), `DELETE FROM station WHERE station_code = $1`, code)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListVelos(w http.ResponseWriter, r *http.Request) {
	electric, err := parseOptionalBool(r.URL.Query().Get("electric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := `SELECT velo_name, bikeelectric FROM velo`
	var args []any
	if electric != nil {
		query += ` WHERE bikeelectric = $1`
		args = append(args, *electric)
	}
	query += ` ORDER BY velo_name`

	velos, err := queryList(r.Context(), a.db, scanVeloRead, query, args...)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, velos)
}

func (a *API) handleGetVelo(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	velos, err := queryList(r.Context(), a.db, scanVeloRead,
		`SELECT velo_name, bikeelectric FROM velo WHERE velo_name = $1`, name)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	if len(velos) == 0 {
		writeError(w, http.StatusNotFound, "velo not found")
		return
	}
	writeJSON(w, http.StatusOK, velos[0])
}

// serverError maps internal failures to 500, distinguishing projection bugs
// in the log.
func (a *API) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *ProjectionError
	if errors.As(err, &perr) {
		a.log.WithError(perr).WithField("path", r.URL.Path).Error("row projection failed")
	} else if !errors.Is(err, sql.ErrNoRows) {
		a.log.WithError(err).WithField("path", r.URL.Path).Error("database error")
	}
	writeError(w, http.StatusInternalServerError, "database error: "+err.Error())
}
