package snapshot

// GPS contains station coordinates
type GPS struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// StationInfo is the station sub-object of an observation
type StationInfo struct {
	Code        string  `json:"code"`
	Name        *string `json:"name"`
	GPS         GPS     `json:"gps"`
	StationType *string `json:"stationType"`
	Type        *string `json:"type"`
}

// Bike is one bike docked at a station at capture time
type Bike struct {
	BikeName     string  `json:"bikeName"`
	BikeElectric *bool   `json:"bikeElectric"`
	BikeStatus   *string `json:"bikeStatus"`
	DockPosition *int    `json:"dockPosition"`
}

// Observation is the state of one station at capture time. Nullable fields
// are pointers so that absent JSON keys become SQL NULLs downstream.
type Observation struct {
	Station    StationInfo `json:"station"`
	State      *string     `json:"state"`
	NbBike     *int        `json:"nbBike"`
	NbEbike    *int        `json:"nbEbike"`
	NbFreeDock *int        `json:"nbFreeDock"`
	Bikes      []Bike      `json:"bikes"`
}
