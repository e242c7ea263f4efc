package network

import "time"

// Ticket is the write-only booking record
type Ticket struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	FromStationID uint      `json:"from_station_id" gorm:"not null;index"`
	ToStationID   uint      `json:"to_station_id" gorm:"not null;index"`
	Price         float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	BookingDate   time.Time `json:"booking_date" gorm:"not null"`
}

func (Ticket) TableName() string {
	return "tickets"
}
