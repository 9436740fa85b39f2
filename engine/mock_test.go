package engine_test

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	lorem "github.com/drhodes/golorem"

	"flowledger/blueprint"
	"flowledger/engine"
	"flowledger/ledger"
)

// ------------------------------------------------------------------------------------------------------------------- //
// MOCK COLLABORATORS

// mockRegister keeps transactions in memory, instance lists in append
// order.
type mockRegister struct {
	transactions map[string]*ledger.Transaction
	instances    map[string][]string
	blueprints   []string
}

func newMockRegister() *mockRegister {
	return &mockRegister{
		transactions: make(map[string]*ledger.Transaction),
		instances:    make(map[string][]string),
	}
}

func (register *mockRegister) add(transaction *ledger.Transaction) {
	register.transactions[transaction.TxId] = transaction
	if transaction.MetaData == nil {
		return
	}
	if transaction.MetaData.InstanceId != "" {
		instanceId := transaction.MetaData.InstanceId
		register.instances[instanceId] = append(register.instances[instanceId], transaction.TxId)
	}
	if transaction.MetaData.TransactionType == ledger.TxBlueprint {
		register.blueprints = append(register.blueprints, transaction.TxId)
	}
}

func (register *mockRegister) GetTransactionById(registerId, txId string) (*ledger.Transaction, error) {
	transaction, found := register.transactions[txId]
	if !found {
		return nil, fmt.Errorf("transaction %s: %w", txId, engine.ErrNotFound)
	}
	return transaction, nil
}

func (register *mockRegister) GetTransactionsByInstanceId(registerId, instanceId string) ([]*ledger.Transaction, error) {
	var transactions []*ledger.Transaction
	for _, txId := range register.instances[instanceId] {
		transactions = append(transactions, register.transactions[txId])
	}
	return transactions, nil
}

func (register *mockRegister) GetBlueprintTransactions(registerId string) ([]*ledger.Transaction, error) {
	var transactions []*ledger.Transaction
	for _, txId := range register.blueprints {
		transactions = append(transactions, register.transactions[txId])
	}
	return transactions, nil
}

// mockWallet skips real encryption: a wallet reads exactly the payloads
// whose access list admits it.
type mockWallet struct {
	sent     []*ledger.Transaction
	register *mockRegister
}

func (wallet *mockWallet) DecryptTransaction(transaction *ledger.Transaction, walletAddress string) ([][]byte, error) {
	var blobs [][]byte
	for i := range transaction.Payloads {
		if transaction.Payloads[i].HasAccess(walletAddress) {
			blobs = append(blobs, transaction.Payloads[i].Data)
		}
	}
	return blobs, nil
}

func (wallet *mockWallet) SignAndSendTransaction(transaction *ledger.Transaction, walletAddress string) (*ledger.Transaction, error) {
	confirmed := *transaction
	confirmed.SenderWallet = walletAddress
	confirmed.TxId = fmt.Sprintf("tx-%d", len(wallet.sent)+1)
	wallet.sent = append(wallet.sent, &confirmed)
	if wallet.register != nil {
		wallet.register.add(&confirmed)
	}
	return &confirmed, nil
}

// mockFiles is an in-memory blob store recording deletions.
type mockFiles struct {
	files   map[string][]byte
	deleted []string
}

func newMockFiles() *mockFiles {
	return &mockFiles{files: make(map[string][]byte)}
}

func (files *mockFiles) GetFile(name string) (io.ReadCloser, error) {
	content, found := files.files[name]
	if !found {
		return nil, fmt.Errorf("file %s: %w", name, engine.ErrNotFound)
	}
	return ioutil.NopCloser(bytes.NewReader(content)), nil
}

func (files *mockFiles) DeleteFile(name string) error {
	delete(files.files, name)
	files.deleted = append(files.deleted, name)
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// FIXTURES

const (
	buyerWallet   = "ws1000000000000000000000000000000000buyer"
	sellerWallet  = "ws100000000000000000000000000000000seller"
	auditorWallet = "ws10000000000000000000000000000000auditor"
	testRegister  = "register-1"
)

// mockBlueprint is a three step purchase flow: the buyer orders, the
// seller confirms, the buyer settles.
func mockBlueprint() *blueprint.Blueprint {
	bp := blueprint.NewBlueprint(lorem.Sentence(2, 4), lorem.Sentence(5, 10))
	bp.Participants = []blueprint.Participant{
		{Id: "buyer", Name: lorem.Word(4, 10), WalletAddress: buyerWallet},
		{Id: "seller", Name: lorem.Word(4, 10), WalletAddress: sellerWallet},
		{Id: "auditor", Name: lorem.Word(4, 10), WalletAddress: auditorWallet},
	}
	bp.Actions = []blueprint.Action{
		{
			Id:     1,
			Title:  "Place order",
			Sender: "buyer",
			Disclosures: []blueprint.Disclosure{
				{ParticipantAddress: "seller", DataPointers: []string{"/price", "/quantity"}},
				{ParticipantAddress: blueprint.TrackingData, DataPointers: []string{"/status"}},
				{ParticipantAddress: blueprint.PublicData, DataPointers: []string{"/category"}},
			},
		},
		{
			Id:     2,
			Title:  "Confirm order",
			Sender: "seller",
			Disclosures: []blueprint.Disclosure{
				{ParticipantAddress: "buyer", DataPointers: []string{"/approved"}},
			},
		},
		{
			Id:     3,
			Title:  "Settle",
			Sender: "buyer",
			Disclosures: []blueprint.Disclosure{
				{ParticipantAddress: "seller", DataPointers: []string{"/reference"}},
			},
		},
	}
	return bp
}

func mockTrackingDisclosure(pointers ...string) blueprint.Disclosure {
	return blueprint.Disclosure{ParticipantAddress: blueprint.TrackingData, DataPointers: pointers}
}

func mockActionMetaData(instanceId string, actionId, nextActionId int) *ledger.TransactionMetaData {
	return &ledger.TransactionMetaData{
		TransactionType: ledger.TxAction,
		RegisterId:      testRegister,
		InstanceId:      instanceId,
		ActionId:        actionId,
		NextActionId:    nextActionId,
	}
}

func mockOrderData() map[string]interface{} {
	return map[string]interface{}{
		"price":    125.5,
		"quantity": 3,
		"status":   "submitted",
		"category": "hardware",
	}
}
