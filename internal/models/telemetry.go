package models

import (
	"time"
)

// TelemetryState is the decoded aircraft state from the last successful exchange.
// Flags are reported as 1.0 (true) or 0.0 (false). A field that was never seen
// or could not be parsed reads 0.0.
type TelemetryState struct {
	PhysicsTimeSEC         float64
	PhysicsSpeedMultiplier float64

	AirspeedMPS    float64
	AltitudeASLMTR float64 // Above sea level
	AltitudeAGLMTR float64 // Above ground level
	GroundspeedMPS float64

	PitchRateDEGpSEC float64
	RollRateDEGpSEC  float64
	YawRateDEGpSEC   float64

	AzimuthDEG     float64 // Yaw
	InclinationDEG float64 // Pitch
	RollDEG        float64

	OrientationQuaternionX float64
	OrientationQuaternionY float64
	OrientationQuaternionZ float64
	OrientationQuaternionW float64

	AircraftPositionXMTR float64
	AircraftPositionYMTR float64

	VelocityWorldUMPS float64
	VelocityWorldVMPS float64
	VelocityWorldWMPS float64
	VelocityBodyUMPS  float64
	VelocityBodyVMPS  float64
	VelocityBodyWMPS  float64

	AccelerationWorldAXMPS2 float64
	AccelerationWorldAYMPS2 float64
	AccelerationWorldAZMPS2 float64
	AccelerationBodyAXMPS2  float64
	AccelerationBodyAYMPS2  float64
	AccelerationBodyAZMPS2  float64

	WindXMPS float64
	WindYMPS float64
	WindZMPS float64

	PropRPM          float64
	HeliMainRotorRPM float64

	BatteryVoltageVOLTS         float64
	BatteryCurrentDrawAMPS      float64
	BatteryRemainingCapacityMAH float64
	FuelRemainingOZ             float64

	IsLocked                     float64
	HasLostComponents            float64
	AnEngineIsRunning            float64
	IsTouchingGround             float64
	FlightAxisControllerIsActive float64
	ResetButtonHasBeenPressed    float64
}

// Values returns every KeyTable field keyed by its wire tag
func (s *TelemetryState) Values() map[string]float64 {
	values := make(map[string]float64, len(KeyTable))
	for _, entry := range KeyTable {
		values[entry.Tag] = *entry.Field(s)
	}
	return values
}

// TouchingGround reports the ground-contact flag
func (s *TelemetryState) TouchingGround() bool {
	return s.IsTouchingGround > 0.5
}

// EngineRunning reports whether any engine is running
func (s *TelemetryState) EngineRunning() bool {
	return s.AnEngineIsRunning > 0.5
}

// TelemetrySample is one successful control cycle as stored by the recorder
type TelemetrySample struct {
	RunID     string
	Cycle     uint64
	Timestamp time.Time
	Channels  ChannelVector
	State     TelemetryState
}
