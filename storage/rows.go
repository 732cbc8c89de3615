package storage

// StationRow is one station dimension row. Once a station code exists in the
// database, later rows with the same code are discarded (first-writer-wins).
type StationRow struct {
	Code        string
	Name        *string
	Latitude    *float64
	Longitude   *float64
	StationType *string
	Type        *string
}

// VeloRow is one bike dimension row, insert-if-absent like StationRow.
type VeloRow struct {
	Name     string
	Electric *bool
}

// EtatStationRow is the occupancy of one station in one snapshot.
type EtatStationRow struct {
	SnapshotID  int64
	StationCode string
	State       *string
	NbBike      *int
	NbEbike     *int
	NbFreeDock  *int
}

// LocalisationVeloRow is the position of one bike in one snapshot.
type LocalisationVeloRow struct {
	SnapshotID   int64
	VeloName     string
	StationCode  string
	BikeStatus   *string
	DockPosition *int
}

// Batches holds everything extracted from one snapshot file. Any of the
// slices may be empty.
type Batches struct {
	Stations      []StationRow
	Velos         []VeloRow
	Etats         []EtatStationRow
	Localisations []LocalisationVeloRow
}
