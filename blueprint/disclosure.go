package blueprint

import "strings"

// ------------------------------------------------------------------------------------------------------------------- //
// DISCLOSURE

// Disclosure marker targets. A ParticipantAddress equal to one of these is
// not a participant reference: TrackingData fields go unencrypted into
// transaction metadata, PublicData fields go into an unrestricted payload.
const (
	TrackingData = "TrackingData"
	PublicData   = "PublicData"
)

// WalletAddressPrefix marks a disclosure target that is already a wallet
// address rather than a participant id.
const WalletAddressPrefix = "ws1"

/*	A Disclosure grants one target sight of the data fields addressed by
	DataPointers. Each pointer is a JSON Pointer style path into the
	submitted data document; a bare field name is treated as /name. */
type Disclosure struct {
	ParticipantAddress string   `json:"participantAddress"`
	DataPointers       []string `json:"dataPointers"`
}

type TargetKind int

const (
	TargetParticipant TargetKind = iota
	TargetTrackingData
	TargetPublicData
)

// Target classifies the disclosure's ParticipantAddress so the three-way
// dispatch in the payload resolver is exhaustive.
func (disclosure Disclosure) Target() TargetKind {
	switch disclosure.ParticipantAddress {
	case TrackingData:
		return TargetTrackingData
	case PublicData:
		return TargetPublicData
	default:
		return TargetParticipant
	}
}

// NormalizePointer forces a leading "/" onto selectors that carry neither a
// "/" nor a "#" prefix; some blueprints declare bare field names.
func NormalizePointer(pointer string) string {
	if strings.HasPrefix(pointer, "/") || strings.HasPrefix(pointer, "#") {
		return pointer
	}
	return "/" + pointer
}

// PointerField is the payload key for a selector: the path with leading
// "/" and "#" trimmed.
func PointerField(pointer string) string {
	return strings.TrimLeft(pointer, "/#")
}
