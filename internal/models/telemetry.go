package models

import "time"

// GpsReading is a single GPS fix from the truck's receiver.
type GpsReading struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float64 `json:"altitude"`
	SpeedKmh   float64 `json:"speed_kmh"`
	Heading    float64 `json:"heading"`
	Satellites int     `json:"satellites"`
	FixQuality int     `json:"fix_quality"`
}

// ObdReading carries engine metrics read off the OBD-II bus.
type ObdReading struct {
	RPM         int `json:"rpm"`
	SpeedKmh    int `json:"speed_kmh"`
	CoolantTemp int `json:"coolant_temp"`
	FuelLevel   int `json:"fuel_level"`
	EngineLoad  int `json:"engine_load"`
	ThrottlePos int `json:"throttle_pos"`
}

// ImuReading is an accelerometer/gyroscope sample.
type ImuReading struct {
	AccelX float64 `json:"accel_x"`
	AccelY float64 `json:"accel_y"`
	AccelZ float64 `json:"accel_z"`
	GyroX  float64 `json:"gyro_x"`
	GyroY  float64 `json:"gyro_y"`
	GyroZ  float64 `json:"gyro_z"`
}

// TireReading is one tire-pressure sensor sample.
type TireReading struct {
	PressurePsi    float64 `json:"pressure_psi"`
	TemperatureC   float64 `json:"temperature_c"`
	BatteryPercent int     `json:"battery_percent"`
	Alert          bool    `json:"alert"`
}

// TpmsReading groups the four tire sensors.
type TpmsReading struct {
	FrontLeft  TireReading `json:"front_left"`
	FrontRight TireReading `json:"front_right"`
	RearLeft   TireReading `json:"rear_left"`
	RearRight  TireReading `json:"rear_right"`
}

// SensorBundle is the full sensor snapshot attached to a telemetry record.
type SensorBundle struct {
	GPS  GpsReading  `json:"gps"`
	OBD  ObdReading  `json:"obd"`
	IMU  ImuReading  `json:"imu"`
	TPMS TpmsReading `json:"tpms"`
}

// CameraFrame references a captured frame; URLs point at the media store.
type CameraFrame struct {
	FrameID      string    `json:"frame_id"`
	Timestamp    time.Time `json:"timestamp"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Format       string    `json:"format"`
	SizeBytes    int64     `json:"size_bytes"`
	IsKeyframe   bool      `json:"is_keyframe"`
}

// CameraFrames holds the optional per-camera frame references for a sample.
type CameraFrames struct {
	FrontCamera  *CameraFrame `json:"front_camera"`
	DriverCamera *CameraFrame `json:"driver_camera"`
	CargoCamera  *CameraFrame `json:"cargo_camera"`
}

// TelemetryRecord is one timestamped sample of a truck's sensors.
type TelemetryRecord struct {
	ID        string       `json:"id"`
	TruckID   string       `json:"truck_id"`
	Timestamp time.Time    `json:"timestamp"`
	Location  Location     `json:"location"`
	SpeedKmh  float64      `json:"speed_kmh"`
	Heading   float64      `json:"heading"`
	Sensors   SensorBundle `json:"sensors"`
	Cameras   CameraFrames `json:"cameras"`
	Scenario  string       `json:"scenario"`
	CreatedAt time.Time    `json:"created_at"`
}
