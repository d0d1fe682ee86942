package protocol

import "fmt"

// ConnectionState flags the kinds of session state a StateChange session
// tracker entry can report. The core connection driver does not act on
// these; they are exposed for callers that parse OK-packet session state
// info (out of this module's scope) and want a shared vocabulary for it.
type ConnectionState uint16

const (
	StateNetworkTimeout       ConnectionState = 1
	StateDatabase             ConnectionState = 1 << 1
	StateReadOnly             ConnectionState = 1 << 2
	StateAutoCommit           ConnectionState = 1 << 3
	StateTransactionIsolation ConnectionState = 1 << 4
)

// StateChange identifies the kind of session-state-change entry carried in
// an OK packet's SESSION_STATE_CHANGED data, when the server negotiated
// CapabilitySessionTrack.
type StateChange uint8

const (
	StateChangeSystemVariables            StateChange = 0
	StateChangeSchema                     StateChange = 1
	StateChangeStateChange                StateChange = 2
	StateChangeGTIDs                      StateChange = 3
	StateChangeTransactionCharacteristics StateChange = 4
	StateChangeTransactionState           StateChange = 5
)

// ParseStateChange validates a raw state-change type byte.
func ParseStateChange(b byte) (StateChange, error) {
	switch StateChange(b) {
	case StateChangeSystemVariables, StateChangeSchema, StateChangeStateChange,
		StateChangeGTIDs, StateChangeTransactionCharacteristics, StateChangeTransactionState:
		return StateChange(b), nil
	default:
		return 0, fmt.Errorf("protocol: %d is not a recognized state change type", b)
	}
}
