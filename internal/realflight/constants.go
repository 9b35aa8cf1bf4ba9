package realflight

import "time"

// Simulator defaults
const (
	// DefaultAddr is where RealFlight serves its controller interface
	DefaultAddr = "127.0.0.1:18083"

	DefaultPoolSize       = 3
	DefaultIOTimeout      = 1 * time.Second
	DefaultRefillInterval = 50 * time.Millisecond

	DefaultHandshakeTimeout = 1 * time.Second
	DefaultExchangeTimeout  = 1 * time.Second

	// DefaultReplyCapacity caps the bytes kept from one reply
	DefaultReplyCapacity = 32 * 1024
)

// Actions
const (
	// ActionInjectController takes over the simulator's RC inputs. It must
	// succeed once before ExchangeData calls are honoured.
	ActionInjectController = "InjectUAVControllerInterface"

	// ActionExchangeData sends channel values and returns aircraft state
	ActionExchangeData = "ExchangeData"
)
