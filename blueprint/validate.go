package blueprint

import (
	"errors"
	"fmt"
)

// ------------------------------------------------------------------------------------------------------------------- //
// VALIDATION

// Check validates a blueprint before publication. A blueprint that fails
// here would produce unresolvable participant or action references at
// submission time, so publication is refused instead.
func (blueprint *Blueprint) Check() error {
	if blueprint.Id == "" {
		return errors.New("blueprint id must be populated")
	} else if blueprint.Title == "" {
		return errors.New("blueprint title must be populated")
	} else if len(blueprint.Participants) < 2 {
		return errors.New("blueprint needs at least two participants")
	} else if len(blueprint.Actions) == 0 {
		return errors.New("blueprint needs at least one action")
	}
	for i := range blueprint.Participants {
		if err := blueprint.Participants[i].check(); err != nil {
			return err
		}
	}
	seen := make(map[int]bool)
	for i := range blueprint.Actions {
		action := &blueprint.Actions[i]
		if seen[action.Id] {
			return fmt.Errorf("duplicate action id %d", action.Id)
		}
		seen[action.Id] = true
		if err := action.check(blueprint); err != nil {
			return err
		}
	}
	return nil
}

func (participant *Participant) check() error {
	if participant.Id == "" {
		return errors.New("participant id must be populated")
	} else if participant.Name == "" {
		return errors.New("participant name must be populated")
	} else if participant.WalletAddress == "" {
		return fmt.Errorf("participant %s has no wallet address", participant.Id)
	}
	return nil
}

func (action *Action) check(blueprint *Blueprint) error {
	if action.Id < 1 {
		return fmt.Errorf("action id %d must be positive", action.Id)
	} else if action.Sender == "" {
		return fmt.Errorf("action %d has no sender", action.Id)
	} else if !hasParticipant(blueprint, action.Sender) {
		return fmt.Errorf("action %d sender %s is not a blueprint participant", action.Id, action.Sender)
	}
	for _, recipient := range action.AdditionalRecipients {
		if !hasParticipant(blueprint, recipient) {
			return fmt.Errorf("action %d recipient %s is not a blueprint participant", action.Id, recipient)
		}
	}
	for _, disclosure := range action.Disclosures {
		if disclosure.Target() != TargetParticipant {
			continue
		}
		address := disclosure.ParticipantAddress
		if !hasParticipant(blueprint, address) && !isWalletAddress(address) {
			return fmt.Errorf("action %d disclosure target %s is not a blueprint participant", action.Id, address)
		}
	}
	return nil
}

func hasParticipant(blueprint *Blueprint, id string) bool {
	for i := range blueprint.Participants {
		if blueprint.Participants[i].Id == id {
			return true
		}
	}
	return false
}

func isWalletAddress(address string) bool {
	return len(address) > len(WalletAddressPrefix) && address[:len(WalletAddressPrefix)] == WalletAddressPrefix
}
