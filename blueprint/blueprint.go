package blueprint

/*
A Blueprint describes a multi-party workflow as a graph of Actions.
Each Action is owned by a sending Participant, discloses a subset of the
submitted data to other participants, and routes to the next Action.
Once published to a register a blueprint is immutable and referenced by
the transaction id that published it.
*/

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// ------------------------------------------------------------------------------------------------------------------- //
// BLUEPRINT

type Blueprint struct {
	Id           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Version      int               `json:"version"`
	DataSchemas  []json.RawMessage `json:"dataSchemas,omitempty"`
	Participants []Participant     `json:"participants"`
	Actions      []Action          `json:"actions"`
}

func NewBlueprint(title string, description string) *Blueprint {
	return &Blueprint{
		Id:          uuid.NewString(),
		Title:       title,
		Description: description,
		Version:     1,
	}
}

// MaxActionId is the highest action id declared in the blueprint. Routing
// past it terminates the instance.
func (blueprint *Blueprint) MaxActionId() int {
	max := 0
	for i := range blueprint.Actions {
		if blueprint.Actions[i].Id > max {
			max = blueprint.Actions[i].Id
		}
	}
	return max
}

// ------------------------------------------------------------------------------------------------------------------- //
// PARTICIPANT

/*	A Participant is one party in the workflow, identified within the
	blueprint by Id and on the ledger by its published wallet address. */
type Participant struct {
	Id                string `json:"id"`
	Name              string `json:"name"`
	Organisation      string `json:"organisation"`
	WalletAddress     string `json:"walletAddress"`
	DidUri            string `json:"didUri,omitempty"`
	UseStealthAddress bool   `json:"useStealthAddress,omitempty"`
}

// ------------------------------------------------------------------------------------------------------------------- //
// ACTION

/*	An Action is one node of the workflow graph. The Sender participant
	submits data against it; Disclosures decide which parts of that data
	each participant receives; Calculations derive extra fields from the
	visible data; Condition, when present, is a rule whose integer result
	is the id of the next action. */
type Action struct {
	Id                   int                    `json:"id"`
	PreviousTxId         string                 `json:"previousTxId,omitempty"`
	Blueprint            string                 `json:"blueprint,omitempty"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description,omitempty"`
	Sender               string                 `json:"sender"`
	Disclosures          []Disclosure           `json:"disclosures"`
	Calculations         Calculations           `json:"calculations,omitempty"`
	Condition            json.RawMessage        `json:"condition,omitempty"`
	RequiredActionData   []string               `json:"requiredActionData,omitempty"`
	AdditionalRecipients []string               `json:"additionalRecipients,omitempty"`
	DataSchemas          []json.RawMessage      `json:"dataSchemas,omitempty"`
	PreviousData         map[string]interface{} `json:"previousData,omitempty"`
}

// ------------------------------------------------------------------------------------------------------------------- //
// CALCULATIONS

/*	Calculations map a field name to the rule that computes it. They are
	declared as a JSON object but evaluation order is the declaration
	order, and later calculations may reference the results of earlier
	ones, so they decode to an ordered list rather than a Go map. */
type Calculation struct {
	Field string
	Rule  json.RawMessage
}

type Calculations []Calculation

func (calculations *Calculations) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil { // JSON null
		*calculations = nil
		return nil
	}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		field := token.(string)
		var rule json.RawMessage
		if err := decoder.Decode(&rule); err != nil {
			return err
		}
		*calculations = append(*calculations, Calculation{Field: field, Rule: rule})
	}
	_, err = decoder.Token() // closing brace
	return err
}

func (calculations Calculations) MarshalJSON() ([]byte, error) {
	if calculations == nil {
		return []byte("null"), nil
	}
	buffer := []byte{'{'}
	for i, calculation := range calculations {
		if i > 0 {
			buffer = append(buffer, ',')
		}
		field, err := json.Marshal(calculation.Field)
		if err != nil {
			return nil, err
		}
		buffer = append(buffer, field...)
		buffer = append(buffer, ':')
		buffer = append(buffer, calculation.Rule...)
	}
	return append(buffer, '}'), nil
}
