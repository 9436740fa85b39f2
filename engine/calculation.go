package engine

import (
	"encoding/json"

	"flowledger/blueprint"
	"flowledger/rules"
)

// ------------------------------------------------------------------------------------------------------------------- //
// CALCULATION ENGINE

/*	CalculationEngine evaluates an action's declared calculations over the
	union of the submitted data and everything previously visible to the
	submitting wallet in this instance. Calculations run in declaration
	order and each later rule sees the results of the earlier ones. */
type CalculationEngine struct {
	Register RegisterClient
	Wallet   WalletClient
	Payloads *PayloadResolver
}

func NewCalculationEngine(register RegisterClient, wallet WalletClient, payloads *PayloadResolver) *CalculationEngine {
	return &CalculationEngine{Register: register, Wallet: wallet, Payloads: payloads}
}

// RunActionCalculations returns the submitted data document extended with
// one field per calculation. An action without calculations passes the
// submission through untouched.
func (engine *CalculationEngine) RunActionCalculations(action *blueprint.Action, submission *ActionSubmission, instanceId string) (map[string]interface{}, error) {
	output := copyDocument(submission.Data)
	if len(action.Calculations) == 0 {
		return output, nil
	}

	previousTransactions, err := engine.Register.GetTransactionsByInstanceId(submission.RegisterId, instanceId)
	if err != nil {
		return nil, upstream("register: transactions for instance "+instanceId, err)
	}
	context, err := engine.Payloads.GetAllPreviousPayloadsForWallet(submission.WalletAddress, previousTransactions, engine.Wallet)
	if err != nil {
		return nil, err
	}
	// submitted values win over history on key collision
	for key, value := range submission.Data {
		context[key] = value
	}

	for _, calculation := range action.Calculations {
		result, err := rules.EvaluateDecimal(calculation.Rule, context)
		if err != nil {
			return nil, &CalculationError{Field: calculation.Field, Err: err}
		}
		value := json.Number(result.String())
		output[calculation.Field] = value
		context[calculation.Field] = value
	}
	return output, nil
}

func copyDocument(document map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(document))
	for key, value := range document {
		copied[key] = value
	}
	return copied
}
