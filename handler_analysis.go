package velibdata

import (
	"net/http"
)

func (a *API) handleListEtats(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := `
		SELECT e.station_code, s.timestamp_capture, e.state, e.nbbike, e.nbebike, e.nbfreedock
		FROM etat_station e
		JOIN snapshot s ON s.snapshot_id = e.snapshot_id`
	var args []any
	if code := r.URL.Query().Get("station_code"); code != "" {
		query += ` WHERE e.station_code = $1`
		args = append(args, code)
	}
	query += ` ORDER BY s.timestamp_capture DESC LIMIT ` + itoa(limit)

	etats, err := queryList(r.Context(), a.db, scanEtatStationRead, query, args...)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, etats)
}

const trajetColumns = `velo_name, station_depart_code, heure_depart, station_arrivee_code, heure_arrivee, duree_trajet_minutes`

func (a *API) handleListTrajets(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := `SELECT ` + trajetColumns + ` FROM v_trajets`
	var args []any
	if name := r.URL.Query().Get("velo_name"); name != "" {
		query += ` WHERE velo_name = $1`
		args = append(args, name)
	}
	query += ` ORDER BY heure_depart DESC LIMIT ` + itoa(limit)

	trajets, err := queryList(r.Context(), a.db, scanTrajet, query, args...)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trajets)
}

func (a *API) handleTrajetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := queryList(r.Context(), a.db, scanTrajetStats, `
		SELECT station_depart_code, station_arrivee_code,
		       COUNT(*) AS nombre_trajets,
		       AVG(duree_trajet_minutes) AS duree_moyenne_minutes
		FROM v_trajets
		GROUP BY station_depart_code, station_arrivee_code
		ORDER BY nombre_trajets DESC`)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleTrajetsByDay(w http.ResponseWriter, r *http.Request) {
	stats, err := queryList(r.Context(), a.db, scanTrajetsByDay, `
		SELECT DATE(heure_depart) AS jour,
		       COUNT(*) AS nombre_trajets,
		       AVG(duree_trajet_minutes) AS duree_moyenne_minutes
		FROM v_trajets
		GROUP BY DATE(heure_depart)
		ORDER BY jour`)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleStationTraffic(w http.ResponseWriter, r *http.Request) {
	traffic, err := queryList(r.Context(), a.db, scanStationTraffic, `
		SELECT t.station_depart_code AS station_code, s.name, 'depart' AS type_flux, COUNT(*) AS nombre_flux
		FROM v_trajets t
		LEFT JOIN station s ON s.station_code = t.station_depart_code
		GROUP BY t.station_depart_code, s.name
		UNION ALL
		SELECT t.station_arrivee_code, s.name, 'arrivee', COUNT(*)
		FROM v_trajets t
		LEFT JOIN station s ON s.station_code = t.station_arrivee_code
		GROUP BY t.station_arrivee_code, s.name
		ORDER BY nombre_flux DESC`)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, traffic)
}

func (a *API) handleTopVelos(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 10, 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	velos, err := queryList(r.Context(), a.db, scanTopVelo, `
		SELECT velo_name,
		       COUNT(*) AS nombre_trajets,
		       SUM(duree_trajet_minutes) / 60.0 AS duree_totale_heures
		FROM v_trajets
		GROUP BY velo_name
		ORDER BY nombre_trajets DESC
		LIMIT `+itoa(limit))
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, velos)
}
