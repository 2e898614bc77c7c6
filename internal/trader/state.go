package trader

// State is the trading loop's position in its cycle.
type State int

const (
	Idle State = iota
	Polling
	Retrying
	PositionOpen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Polling:
		return "POLLING"
	case Retrying:
		return "RETRYING"
	case PositionOpen:
		return "POSITION_OPEN"
	default:
		return "UNKNOWN"
	}
}
