package network

type Route struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	FromStationID uint      `json:"from_station_id" gorm:"not null;index:idx_routes_pair"`
	ToStationID   uint      `json:"to_station_id" gorm:"not null;index:idx_routes_pair"`
	DepartureTime ClockTime `json:"departure_time" gorm:"type:time;not null"`
	ArrivalTime   ClockTime `json:"arrival_time" gorm:"type:time;not null"`
}

func (Route) TableName() string {
	return "routes"
}
