package models

import "time"

// TruckStatus enumerates the operational states a truck can report.
type TruckStatus string

const (
	TruckOnline      TruckStatus = "Online"
	TruckOffline     TruckStatus = "Offline"
	TruckMaintenance TruckStatus = "Maintenance"
	TruckInactive    TruckStatus = "Inactive"
)

// Location is a [longitude, latitude] pair, matching the wire format used by
// the map widgets.
type Location [2]float64

// Truck is the root entity every other fleet record references.
type Truck struct {
	ID           string      `json:"id"`
	TruckID      string      `json:"truck_id"`
	Model        string      `json:"model"`
	Make         string      `json:"make"`
	Year         string      `json:"year"`
	LicensePlate string      `json:"license_plate"`
	VIN          string      `json:"vin"`
	FleetID      *string     `json:"fleet_id"`
	DriverID     *string     `json:"driver_id"`
	Status       TruckStatus `json:"status"`
	LastSeen     time.Time   `json:"last_seen"`
	Location     Location    `json:"location"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CreateTruckRequest is the payload accepted when registering a new truck.
type CreateTruckRequest struct {
	Model        string  `json:"model" binding:"required" validate:"required,min=1,max=64"`
	Make         string  `json:"make" binding:"required" validate:"required,min=1,max=64"`
	Year         string  `json:"year" binding:"required" validate:"required,len=4"`
	LicensePlate string  `json:"license_plate" binding:"required" validate:"required,min=2,max=16"`
	VIN          string  `json:"vin" validate:"omitempty,min=11,max=20"`
	FleetID      *string `json:"fleet_id"`
}

// UpdateTruckRequest carries the patchable subset of truck fields. Nil fields
// are left untouched.
type UpdateTruckRequest struct {
	Model        *string      `json:"model"`
	Make         *string      `json:"make"`
	Year         *string      `json:"year"`
	LicensePlate *string      `json:"license_plate"`
	VIN          *string      `json:"vin"`
	FleetID      *string      `json:"fleet_id"`
	DriverID     *string      `json:"driver_id"`
	Status       *TruckStatus `json:"status"`
}

// ValidTruckStatus reports whether s is one of the declared truck statuses.
func ValidTruckStatus(s TruckStatus) bool {
	switch s {
	case TruckOnline, TruckOffline, TruckMaintenance, TruckInactive:
		return true
	}
	return false
}
