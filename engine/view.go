package engine

import (
	"encoding/json"

	"flowledger/blueprint"
	"flowledger/ledger"
)

// ------------------------------------------------------------------------------------------------------------------- //
// ACTION VIEW SERVICE

/*	ActionViewService reconstructs the action a confirmed transaction puts
	in front of a wallet: which blueprint node comes next, chained to the
	viewed transaction, together with the data the wallet is entitled to
	see. */
type ActionViewService struct {
	Wallet   WalletClient
	Register RegisterClient
	Payloads *PayloadResolver
}

func NewActionViewService(wallet WalletClient, register RegisterClient, payloads *PayloadResolver) *ActionViewService {
	return &ActionViewService{Wallet: wallet, Register: register, Payloads: payloads}
}

// GetAction decrypts the transaction for the wallet and resolves the
// blueprint action it represents. With aggregatePrevious the whole
// instance history visible to the wallet is merged into PreviousData,
// filtered down to the fields the action requires when it declares any;
// without it only the transaction's own payloads are merged.
func (service *ActionViewService) GetAction(transaction *ledger.Transaction, walletAddress, registerId, transactionId string,
	aggregatePrevious bool) (*blueprint.Action, error) {
	if transaction.MetaData == nil {
		return nil, &ResolutionError{Ref: "transaction " + transactionId, Reason: "transaction has no metadata"}
	}
	decrypted, err := service.Wallet.DecryptTransaction(transaction, walletAddress)
	if err != nil {
		return nil, upstream("wallet: decrypt transaction "+transactionId, err)
	}

	if transaction.MetaData.TransactionType == ledger.TxBlueprint {
		// the decrypted payload is the blueprint itself
		if len(decrypted) == 0 {
			return nil, &ResolutionError{Ref: "transaction " + transactionId, Reason: "wallet cannot read the blueprint payload"}
		}
		bp, err := decodeBlueprint(decrypted[0])
		if err != nil {
			return nil, err
		}
		action, err := startingAction(bp)
		if err != nil {
			return nil, err
		}
		action.PreviousTxId = transactionId
		action.Blueprint = transactionId
		return action, nil
	}

	bp, err := service.fetchBlueprint(transaction.MetaData.BlueprintId, walletAddress, registerId)
	if err != nil {
		return nil, err
	}
	action, err := actionFromBlueprint(transaction, transactionId, bp)
	if err != nil {
		return nil, err
	}
	action.Blueprint = transaction.MetaData.BlueprintId

	if !aggregatePrevious {
		combined := make(map[string]interface{})
		for _, blob := range decrypted {
			var payloadKvp map[string]interface{}
			if err := json.Unmarshal(blob, &payloadKvp); err != nil {
				continue
			}
			for key, value := range payloadKvp {
				combined[key] = value
			}
		}
		action.PreviousData = combined
		return action, nil
	}

	previousTransactions, err := service.Register.GetTransactionsByInstanceId(registerId, transaction.MetaData.InstanceId)
	if err != nil {
		return nil, upstream("register: transactions for instance "+transaction.MetaData.InstanceId, err)
	}
	previousData, err := service.Payloads.GetAllPreviousPayloadsForWallet(walletAddress, previousTransactions, service.Wallet)
	if err != nil {
		return nil, err
	}
	required := requiredFields(action, bp, walletAddress)
	if len(required) > 0 {
		filtered := make(map[string]interface{})
		for key, value := range previousData {
			if required[key] {
				filtered[key] = value
			}
		}
		previousData = filtered
	}
	action.PreviousData = previousData
	return action, nil
}

// GetStartingActions lists the first action of every blueprint on the
// register (latest version per blueprint) that the wallet may start.
func (service *ActionViewService) GetStartingActions(registerId, walletAddress string) ([]*blueprint.Action, error) {
	transactions, err := service.Register.GetBlueprintTransactions(registerId)
	if err != nil {
		return nil, upstream("register: blueprint transactions", err)
	}
	latest := latestBlueprintTransactions(transactions)

	var startable []*blueprint.Action
	for _, transaction := range latest {
		decrypted, err := service.Wallet.DecryptTransaction(transaction, walletAddress)
		if err != nil {
			return nil, upstream("wallet: decrypt blueprint "+transaction.TxId, err)
		}
		if len(decrypted) == 0 {
			continue
		}
		bp, err := decodeBlueprint(decrypted[0])
		if err != nil {
			return nil, err
		}
		bp.Id = transaction.TxId
		action, err := startingAction(bp)
		if err != nil {
			return nil, err
		}
		action.Blueprint = bp.Id
		action.PreviousTxId = bp.Id
		for i := range bp.Participants {
			if bp.Participants[i].WalletAddress == walletAddress && bp.Participants[i].Id == action.Sender {
				startable = append(startable, action)
				break
			}
		}
	}
	return startable, nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// HELPERS

// startingAction is the copy of the action opening a workflow: the one
// with id 1.
func startingAction(bp *blueprint.Blueprint) (*blueprint.Action, error) {
	for i := range bp.Actions {
		if bp.Actions[i].Id == 1 {
			action := bp.Actions[i]
			return &action, nil
		}
	}
	return nil, &ResolutionError{Ref: "blueprint " + bp.Id, Reason: "first action with id 1 could not be found"}
}

// actionFromBlueprint picks the action the transaction puts in play: the
// one named by NextActionId, or by ActionId when the instance already
// terminated. The returned copy is chained behind the viewed transaction.
func actionFromBlueprint(transaction *ledger.Transaction, transactionId string, bp *blueprint.Blueprint) (*blueprint.Action, error) {
	targetId := transaction.MetaData.NextActionId
	if targetId == ledger.Terminal {
		targetId = transaction.MetaData.ActionId
	}
	for i := range bp.Actions {
		if bp.Actions[i].Id == targetId {
			action := bp.Actions[i]
			action.PreviousTxId = transactionId
			return &action, nil
		}
	}
	return nil, &ResolutionError{Ref: "action", Reason: "no action with that id in the blueprint"}
}

// requiredFields is the allow-list an aggregating view filters on: the
// viewing participant's disclosure-to-self entries plus the action's
// declared required fields. Empty means unfiltered.
func requiredFields(action *blueprint.Action, bp *blueprint.Blueprint, walletAddress string) map[string]bool {
	required := make(map[string]bool)
	var participantId string
	for i := range bp.Participants {
		if bp.Participants[i].WalletAddress == walletAddress {
			participantId = bp.Participants[i].Id
			break
		}
	}
	for _, disclosure := range action.Disclosures {
		if participantId != "" && disclosure.ParticipantAddress == participantId {
			for _, pointer := range disclosure.DataPointers {
				required[blueprint.PointerField(pointer)] = true
			}
		}
	}
	for _, field := range action.RequiredActionData {
		required[blueprint.PointerField(field)] = true
	}
	return required
}

func (service *ActionViewService) fetchBlueprint(blueprintId, walletAddress, registerId string) (*blueprint.Blueprint, error) {
	transaction, err := service.Register.GetTransactionById(registerId, blueprintId)
	if err != nil {
		return nil, upstream("register: transaction "+blueprintId, err)
	}
	decrypted, err := service.Wallet.DecryptTransaction(transaction, walletAddress)
	if err != nil {
		return nil, upstream("wallet: decrypt blueprint "+blueprintId, err)
	}
	if len(decrypted) == 0 {
		return nil, &ResolutionError{Ref: "blueprint " + blueprintId, Reason: "wallet cannot read the blueprint payload"}
	}
	return decodeBlueprint(decrypted[0])
}

func decodeBlueprint(raw []byte) (*blueprint.Blueprint, error) {
	var bp blueprint.Blueprint
	if err := json.Unmarshal(raw, &bp); err != nil {
		return nil, &ResolutionError{Ref: "blueprint", Reason: "payload is not a blueprint document"}
	}
	return &bp, nil
}

// latestBlueprintTransactions keeps the newest transaction per blueprint
// id, relying on the register's append order.
func latestBlueprintTransactions(transactions []*ledger.Transaction) []*ledger.Transaction {
	index := make(map[string]int)
	var latest []*ledger.Transaction
	for _, transaction := range transactions {
		if transaction.MetaData == nil {
			continue
		}
		key := transaction.MetaData.BlueprintId
		if position, seen := index[key]; seen {
			latest[position] = transaction
			continue
		}
		index[key] = len(latest)
		latest = append(latest, transaction)
	}
	return latest
}
