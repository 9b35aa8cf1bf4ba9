package models

// Channel layout constants
const (
	// ChannelCount is the number of RC channels sent with every exchange
	ChannelCount = 12

	// ChannelCenter is the value of a channel nobody drives
	ChannelCenter = 0.5

	// SelectedChannelsMask selects all 12 channels (bits 0-11)
	SelectedChannelsMask = 1<<ChannelCount - 1 // 4095

	// Channel positions. The server has no schema, position is the meaning.
	ChannelAileron  = 0
	ChannelElevator = 1
	ChannelThrottle = 2
	ChannelRudder   = 3
	ChannelFlaps    = 4
	ChannelGear     = 5
)

// ControlInput holds the stick and switch positions for one control cycle.
// Values are expected in [0,1] but are passed through unchecked.
type ControlInput struct {
	Aileron  float64 // Roll
	Elevator float64 // Pitch
	Throttle float64
	Rudder   float64 // Yaw
	Flaps    float64
	Gear     float64
}

// NeutralInput returns centered sticks with idle throttle, flaps up and gear down
func NeutralInput() ControlInput {
	return ControlInput{
		Aileron:  ChannelCenter,
		Elevator: ChannelCenter,
		Throttle: 0,
		Rudder:   ChannelCenter,
		Flaps:    0,
		Gear:     0,
	}
}

// ChannelVector is the positional channel list sent to the simulator
type ChannelVector [ChannelCount]float64

// NewChannelVector maps a ControlInput onto channels 0-5 and leaves 6-11 centered
func NewChannelVector(in ControlInput) ChannelVector {
	var v ChannelVector
	for i := range v {
		v[i] = ChannelCenter
	}

	v[ChannelAileron] = in.Aileron
	v[ChannelElevator] = in.Elevator
	v[ChannelThrottle] = in.Throttle
	v[ChannelRudder] = in.Rudder
	v[ChannelFlaps] = in.Flaps
	v[ChannelGear] = in.Gear

	return v
}
