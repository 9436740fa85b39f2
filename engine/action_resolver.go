package engine

import (
	"flowledger/blueprint"
	"flowledger/ledger"
	"flowledger/rules"
)

// ------------------------------------------------------------------------------------------------------------------- //
// ACTION RESOLVER

// ActionResolver answers graph questions about a blueprint: which node an
// id names, which wallet a participant publishes, and where the flow goes
// after an action.
type ActionResolver struct{}

func (ActionResolver) ResolveNextAction(nextActionId int, bp *blueprint.Blueprint) (*blueprint.Action, error) {
	for i := range bp.Actions {
		if bp.Actions[i].Id == nextActionId {
			return &bp.Actions[i], nil
		}
	}
	return nil, &ResolutionError{Ref: "action", Reason: "no action with that id in the blueprint"}
}

func (ActionResolver) ResolveParticipantWalletAddress(participantId string, bp *blueprint.Blueprint) (string, error) {
	for i := range bp.Participants {
		if bp.Participants[i].Id == participantId {
			if bp.Participants[i].WalletAddress == "" {
				return "", &ResolutionError{Ref: "participant " + participantId, Reason: "participant has no wallet address"}
			}
			return bp.Participants[i].WalletAddress, nil
		}
	}
	return "", &ResolutionError{Ref: "participant " + participantId, Reason: "no such participant in the blueprint"}
}

// IsFinalAction resolves the id of the action following the current one
// and reports whether the instance terminates here. The default next id is
// current+1; a routing rule that evaluates to an integer replaces it. The
// rule result is the literal next action id, not a boolean branch. A rule
// producing a non-integer result falls back to the default. An id beyond
// the blueprint's highest action id closes the instance.
func (resolver ActionResolver) IsFinalAction(action *blueprint.Action, bp *blueprint.Blueprint, submittedData map[string]interface{}) (isFinal bool, nextActionId int) {
	nextActionId = action.Id + 1
	if len(action.Condition) > 0 {
		if result, ok := rules.EvaluateInt(action.Condition, submittedData); ok {
			nextActionId = result
		}
	}
	if nextActionId > bp.MaxActionId() {
		nextActionId = ledger.Terminal
	}
	return nextActionId < 0, nextActionId
}
