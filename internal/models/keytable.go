package models

// KeyTableEntry binds a telemetry wire tag to its slot in TelemetryState
type KeyTableEntry struct {
	Tag   string
	Field func(s *TelemetryState) *float64
}

// KeyTable lists every telemetry tag read from an ExchangeData reply, in the
// order the simulator writes them. Each tag is looked up independently; the
// order only matters when deciding which tags a truncated reply cut off.
var KeyTable = []KeyTableEntry{
	{"m-currentPhysicsTime-SEC", func(s *TelemetryState) *float64 { return &s.PhysicsTimeSEC }},
	{"m-currentPhysicsSpeedMultiplier", func(s *TelemetryState) *float64 { return &s.PhysicsSpeedMultiplier }},
	{"m-airspeed-MPS", func(s *TelemetryState) *float64 { return &s.AirspeedMPS }},
	{"m-altitudeASL-MTR", func(s *TelemetryState) *float64 { return &s.AltitudeASLMTR }},
	{"m-altitudeAGL-MTR", func(s *TelemetryState) *float64 { return &s.AltitudeAGLMTR }},
	{"m-groundspeed-MPS", func(s *TelemetryState) *float64 { return &s.GroundspeedMPS }},
	{"m-pitchRate-DEGpSEC", func(s *TelemetryState) *float64 { return &s.PitchRateDEGpSEC }},
	{"m-rollRate-DEGpSEC", func(s *TelemetryState) *float64 { return &s.RollRateDEGpSEC }},
	{"m-yawRate-DEGpSEC", func(s *TelemetryState) *float64 { return &s.YawRateDEGpSEC }},
	{"m-azimuth-DEG", func(s *TelemetryState) *float64 { return &s.AzimuthDEG }},
	{"m-inclination-DEG", func(s *TelemetryState) *float64 { return &s.InclinationDEG }},
	{"m-roll-DEG", func(s *TelemetryState) *float64 { return &s.RollDEG }},
	{"m-orientationQuaternion-X", func(s *TelemetryState) *float64 { return &s.OrientationQuaternionX }},
	{"m-orientationQuaternion-Y", func(s *TelemetryState) *float64 { return &s.OrientationQuaternionY }},
	{"m-orientationQuaternion-Z", func(s *TelemetryState) *float64 { return &s.OrientationQuaternionZ }},
	{"m-orientationQuaternion-W", func(s *TelemetryState) *float64 { return &s.OrientationQuaternionW }},
	{"m-aircraftPositionX-MTR", func(s *TelemetryState) *float64 { return &s.AircraftPositionXMTR }},
	{"m-aircraftPositionY-MTR", func(s *TelemetryState) *float64 { return &s.AircraftPositionYMTR }},
	{"m-velocityWorldU-MPS", func(s *TelemetryState) *float64 { return &s.VelocityWorldUMPS }},
	{"m-velocityWorldV-MPS", func(s *TelemetryState) *float64 { return &s.VelocityWorldVMPS }},
	{"m-velocityWorldW-MPS", func(s *TelemetryState) *float64 { return &s.VelocityWorldWMPS }},
	{"m-velocityBodyU-MPS", func(s *TelemetryState) *float64 { return &s.VelocityBodyUMPS }},
	{"m-velocityBodyV-MPS", func(s *TelemetryState) *float64 { return &s.VelocityBodyVMPS }},
	{"m-velocityBodyW-MPS", func(s *TelemetryState) *float64 { return &s.VelocityBodyWMPS }},
	{"m-accelerationWorldAX-MPS2", func(s *TelemetryState) *float64 { return &s.AccelerationWorldAXMPS2 }},
	{"m-accelerationWorldAY-MPS2", func(s *TelemetryState) *float64 { return &s.AccelerationWorldAYMPS2 }},
	{"m-accelerationWorldAZ-MPS2", func(s *TelemetryState) *float64 { return &s.AccelerationWorldAZMPS2 }},
	{"m-accelerationBodyAX-MPS2", func(s *TelemetryState) *float64 { return &s.AccelerationBodyAXMPS2 }},
	{"m-accelerationBodyAY-MPS2", func(s *TelemetryState) *float64 { return &s.AccelerationBodyAYMPS2 }},
	{"m-accelerationBodyAZ-MPS2", func(s *TelemetryState) *float64 { return &s.AccelerationBodyAZMPS2 }},
	{"m-windX-MPS", func(s *TelemetryState) *float64 { return &s.WindXMPS }},
	{"m-windY-MPS", func(s *TelemetryState) *float64 { return &s.WindYMPS }},
	{"m-windZ-MPS", func(s *TelemetryState) *float64 { return &s.WindZMPS }},
	{"m-propRPM", func(s *TelemetryState) *float64 { return &s.PropRPM }},
	{"m-heliMainRotorRPM", func(s *TelemetryState) *float64 { return &s.HeliMainRotorRPM }},
	{"m-batteryVoltage-VOLTS", func(s *TelemetryState) *float64 { return &s.BatteryVoltageVOLTS }},
	{"m-batteryCurrentDraw-AMPS", func(s *TelemetryState) *float64 { return &s.BatteryCurrentDrawAMPS }},
	{"m-batteryRemainingCapacity-MAH", func(s *TelemetryState) *float64 { return &s.BatteryRemainingCapacityMAH }},
	{"m-fuelRemaining-OZ", func(s *TelemetryState) *float64 { return &s.FuelRemainingOZ }},
	{"m-isLocked", func(s *TelemetryState) *float64 { return &s.IsLocked }},
	{"m-hasLostComponents", func(s *TelemetryState) *float64 { return &s.HasLostComponents }},
	{"m-anEngineIsRunning", func(s *TelemetryState) *float64 { return &s.AnEngineIsRunning }},
	{"m-isTouchingGround", func(s *TelemetryState) *float64 { return &s.IsTouchingGround }},
	{"m-flightAxisControllerIsActive", func(s *TelemetryState) *float64 { return &s.FlightAxisControllerIsActive }},
	{"m-resetButtonHasBeenPressed", func(s *TelemetryState) *float64 { return &s.ResetButtonHasBeenPressed }},
}

// LookupKey returns the KeyTable entry for a wire tag
func LookupKey(tag string) (KeyTableEntry, bool) {
	for _, entry := range KeyTable {
		if entry.Tag == tag {
			return entry, true
		}
	}
	return KeyTableEntry{}, false
}
