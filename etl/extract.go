package etl

import (
	"github.com/Karim-DataScience/JeVelibererLaData/snapshot"
	"github.com/Karim-DataScience/JeVelibererLaData/storage"
)

// Extract flattens one decoded snapshot into the four relational batches.
// Observations without a station code are skipped silently, as are bike
// entries without a name. A coded observation always yields an etat_station
// row, whether or not any bikes are docked. Pure transformation, no I/O.
func Extract(observations []snapshot.Observation, snapshotID int64) *storage.Batches {
	b := &storage.Batches{}
	for _, obs := range observations {
		code := obs.Station.Code
		if code == "" {
			continue
		}

		b.Stations = append(b.Stations, storage.StationRow{
			Code:        code,
			Name:        obs.Station.Name,
			Latitude:    obs.Station.GPS.Latitude,
			Longitude:   obs.Station.GPS.Longitude,
			StationType: obs.Station.StationType,
			Type:        obs.Station.Type,
		})

		b.Etats = append(b.Etats, storage.EtatStationRow{
			SnapshotID:  snapshotID,
			StationCode: code,
			State:       obs.State,
			NbBike:      obs.NbBike,
			NbEbike:     obs.NbEbike,
			NbFreeDock:  obs.NbFreeDock,
		})

		for _, bike := range obs.Bikes {
			if bike.BikeName == "" {
				continue
			}
			b.Velos = append(b.Velos, storage.VeloRow{
				Name:     bike.BikeName,
				Electric: bike.BikeElectric,
			})
			b.Localisations = append(b.Localisations, storage.LocalisationVeloRow{
				SnapshotID:   snapshotID,
				VeloName:     bike.BikeName,
				StationCode:  code,
				BikeStatus:   bike.BikeStatus,
				DockPosition: bike.DockPosition,
			})
		}
	}
	return b
}
