package network

// Station is one stop along the line. Order is the position used for fare distance and
// does not have to be contiguous.
type Station struct {
	ID    uint    `groups:"basic" json:"id" gorm:"primaryKey"`
	Name  string  `groups:"basic" json:"name" gorm:"size:255;not null" validate:"required"`
	Order int     `groups:"basic" json:"order" gorm:"column:station_order;not null" validate:"min=1"`
	CN    *string `groups:"detailed" json:"cn" gorm:"column:cn;size:50"`
}

func (Station) TableName() string {
	return "stations"
}

func (s *Station) HasCN() bool {
	return s.CN != nil
}

// StationBase is the stations table as it exists before the carrier number column is added
type StationBase struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:255;not null"`
	Order int    `gorm:"column:station_order;not null"`
}

func (StationBase) TableName() string {
	return "stations"
}

// Destination is a candidate station reachable from an origin
type Destination struct {
	StationID  uint   `json:"station_id"`
	Name       string `json:"name"`
	RouteCount int    `json:"route_count"`
	Distance   int    `json:"distance"`
}

type StationInfo struct {
	Station           Station  `json:"station"`
	RouteCount        int      `json:"route_count"`
	ConnectedStations []string `json:"connected_stations"`
}
