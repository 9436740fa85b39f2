package engine_test

import (
	"encoding/json"
	"testing"

	"flowledger/blueprint"
	"flowledger/engine"
	"flowledger/ledger"
)

func newViewService(register *mockRegister) *engine.ActionViewService {
	return engine.NewActionViewService(&mockWallet{}, register, engine.NewPayloadResolver(newMockFiles()))
}

func blueprintTransaction(txId, blueprintId string, bp *blueprint.Blueprint, wallets ...string) *ledger.Transaction {
	raw, _ := json.Marshal(bp)
	return &ledger.Transaction{
		TxId:     txId,
		Payloads: []ledger.Payload{{Id: 1, Data: raw, WalletAccess: wallets}},
		MetaData: &ledger.TransactionMetaData{
			TransactionType: ledger.TxBlueprint,
			RegisterId:      testRegister,
			BlueprintId:     blueprintId,
		},
	}
}

// ------------------------------------------------------------------------------------------------------------------- //
// VIEWING TRANSACTIONS

func TestGetActionFromBlueprintTransaction(t *testing.T) {
	bp := mockBlueprint()
	transaction := blueprintTransaction("bp-tx", bp.Id, bp)
	service := newViewService(newMockRegister())

	action, err := service.GetAction(transaction, buyerWallet, testRegister, "bp-tx", false)
	if err != nil {
		t.Fatalf("View failed: %s", err)
	}
	// a blueprint transaction puts the starting action in play
	if action.Id != 1 {
		t.Errorf("Wrong action: %d", action.Id)
	}
	if action.PreviousTxId != "bp-tx" || action.Blueprint != "bp-tx" {
		t.Errorf("Action not chained to the blueprint transaction: %s, %s", action.PreviousTxId, action.Blueprint)
	}
}

func TestGetActionResolvesNextAction(t *testing.T) {
	bp := mockBlueprint()
	register := newMockRegister()
	register.add(blueprintTransaction("blueprint-tx", bp.Id, bp))
	viewed := payloadTransaction("tx-1", map[string]interface{}{"price": 125.5, "quantity": 3})
	viewed.Payloads[0].WalletAccess = []string{sellerWallet, buyerWallet}
	viewed.MetaData = mockActionMetaData("instance-1", 1, 2)
	viewed.MetaData.BlueprintId = "blueprint-tx"
	service := newViewService(register)

	action, err := service.GetAction(viewed, sellerWallet, testRegister, "tx-1", false)
	if err != nil {
		t.Fatalf("View failed: %s", err)
	}
	if action.Id != 2 {
		t.Errorf("Wrong action: %d", action.Id)
	}
	if action.PreviousTxId != "tx-1" || action.Blueprint != "blueprint-tx" {
		t.Errorf("Action not chained: %s, %s", action.PreviousTxId, action.Blueprint)
	}
	if action.PreviousData["price"] != 125.5 || action.PreviousData["quantity"] != float64(3) {
		t.Errorf("Wrong previous data: %v", action.PreviousData)
	}
}

func TestGetActionOnTerminatedInstance(t *testing.T) {
	bp := mockBlueprint()
	register := newMockRegister()
	register.add(blueprintTransaction("blueprint-tx", bp.Id, bp))
	viewed := payloadTransaction("tx-3", map[string]interface{}{"reference": "ref-1"})
	viewed.MetaData = mockActionMetaData("instance-1", 3, ledger.Terminal)
	viewed.MetaData.BlueprintId = "blueprint-tx"
	service := newViewService(register)

	action, err := service.GetAction(viewed, buyerWallet, testRegister, "tx-3", false)
	if err != nil {
		t.Fatalf("View failed: %s", err)
	}
	// a closed instance shows its last action
	if action.Id != 3 {
		t.Errorf("Wrong action: %d", action.Id)
	}
}

func TestGetActionAggregatesInstanceHistory(t *testing.T) {
	bp := mockBlueprint()
	bp.Actions[1].RequiredActionData = []string{"/price"}
	register := newMockRegister()
	register.add(blueprintTransaction("blueprint-tx", bp.Id, bp))

	first := payloadTransaction("tx-1", map[string]interface{}{"price": 125.5, "status": "submitted"})
	first.MetaData = mockActionMetaData("instance-1", 1, 2)
	first.MetaData.BlueprintId = "blueprint-tx"
	register.add(first)
	second := payloadTransaction("tx-2", map[string]interface{}{"approved": true})
	second.MetaData = mockActionMetaData("instance-1", 2, 2)
	second.MetaData.BlueprintId = "blueprint-tx"
	register.add(second)
	service := newViewService(register)

	action, err := service.GetAction(second, buyerWallet, testRegister, "tx-2", true)
	if err != nil {
		t.Fatalf("View failed: %s", err)
	}
	// required fields plus the viewer's own disclosures, nothing else
	if action.PreviousData["price"] != 125.5 {
		t.Errorf("Required field missing: %v", action.PreviousData)
	}
	if action.PreviousData["approved"] != true {
		t.Errorf("Disclosed field missing: %v", action.PreviousData)
	}
	if _, leaked := action.PreviousData["status"]; leaked {
		t.Errorf("Unrequired field leaked: %v", action.PreviousData)
	}
}

func TestGetActionWithoutMetaDataFails(t *testing.T) {
	service := newViewService(newMockRegister())
	if _, err := service.GetAction(&ledger.Transaction{TxId: "tx-1"}, buyerWallet, testRegister, "tx-1", false); err == nil {
		t.Errorf("Transaction without metadata should fail")
	}
}

// ------------------------------------------------------------------------------------------------------------------- //
// STARTING ACTIONS

func TestGetStartingActions(t *testing.T) {
	purchase := mockBlueprint()
	review := mockBlueprint()
	review.Actions[0].Sender = "seller"
	register := newMockRegister()
	register.add(blueprintTransaction("purchase-v1", purchase.Id, purchase))
	register.add(blueprintTransaction("purchase-v2", purchase.Id, purchase))
	register.add(blueprintTransaction("review-v1", review.Id, review))
	service := newViewService(register)

	startable, err := service.GetStartingActions(testRegister, buyerWallet)
	if err != nil {
		t.Fatalf("Starting action listing failed: %s", err)
	}
	// the buyer opens the purchase flow only, on its latest version
	if len(startable) != 1 {
		t.Fatalf("Wrong startable count: %d", len(startable))
	}
	action := startable[0]
	if action.Id != 1 || action.Sender != "buyer" {
		t.Errorf("Wrong starting action: %d (%s)", action.Id, action.Sender)
	}
	if action.Blueprint != "purchase-v2" || action.PreviousTxId != "purchase-v2" {
		t.Errorf("Starting action not chained to the latest version: %s", action.Blueprint)
	}

	sellerStartable, err := service.GetStartingActions(testRegister, sellerWallet)
	if err != nil {
		t.Fatalf("Starting action listing failed: %s", err)
	}
	if len(sellerStartable) != 1 || sellerStartable[0].Blueprint != "review-v1" {
		t.Errorf("Seller should open the review flow only: %v", sellerStartable)
	}
}
