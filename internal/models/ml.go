package models

import "time"

// MlHardware names the compute device an inference ran on.
type MlHardware string

const (
	HardwareCPU  MlHardware = "Cpu"
	HardwareCUDA MlHardware = "Cuda"
)

// MlResult is the model-specific inference output. Exactly the fields for the
// producing model are populated; the rest stay at their zero values and are
// omitted from JSON.
type MlResult struct {
	// drowsiness
	IsDrowsy        *bool    `json:"is_drowsy,omitempty"`
	EyeClosureRatio *float64 `json:"eye_closure_ratio,omitempty"`
	// lane_departure
	IsDeparting     *bool `json:"is_departing,omitempty"`
	DeviationPixels *int  `json:"deviation_pixels,omitempty"`
	// cargo_tamper
	IsTampered  *bool    `json:"is_tampered,omitempty"`
	MotionScore *float64 `json:"motion_score,omitempty"`
	// license_plate
	PlateText   *string    `json:"plate_text,omitempty"`
	BoundingBox []float64  `json:"bounding_box,omitempty"`
	// weather
	WeatherType *string  `json:"weather_type,omitempty"`
	VisibilityM *float64 `json:"visibility_m,omitempty"`
}

// MlEvent is a single edge-inference result reported by a truck.
type MlEvent struct {
	ID                   string         `json:"id"`
	EventID              string         `json:"event_id"`
	TruckID              string         `json:"truck_id"`
	ModelName            string         `json:"model_name"`
	ModelVersion         string         `json:"model_version"`
	Timestamp            time.Time      `json:"timestamp"`
	Result               MlResult       `json:"result"`
	Confidence           float64        `json:"confidence"`
	CalibratedConfidence float64        `json:"calibrated_confidence"`
	LatencyMs            float64        `json:"latency_ms"`
	HardwareUsed         MlHardware     `json:"hardware_used"`
	Meta                 map[string]any `json:"meta"`
	CreatedAt            time.Time      `json:"created_at"`
}
