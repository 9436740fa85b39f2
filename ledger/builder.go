package ledger

import "encoding/json"

// ------------------------------------------------------------------------------------------------------------------- //
// TRANSACTION BUILDER

// CurrentVersion is the transaction wire version this builder emits.
const CurrentVersion uint32 = 3

/*	TxBuilder assembles an unsigned transaction: add payloads with their
	wallet-access lists, link the previous transaction, set recipients and
	metadata, then take the transport form for signing. Payload ids are
	assigned in insertion order starting at 1. */
type TxBuilder struct {
	transaction Transaction
}

func NewTxBuilder() *TxBuilder {
	return &TxBuilder{transaction: Transaction{Version: CurrentVersion}}
}

// AddPayload appends a payload and returns its assigned id. The access
// list is deduplicated; an empty list leaves the payload unrestricted.
func (builder *TxBuilder) AddPayload(data []byte, walletAccess []string) uint32 {
	id := uint32(len(builder.transaction.Payloads) + 1)
	var deduplicated []string
	for _, wallet := range walletAccess {
		if wallet == "" || contains(deduplicated, wallet) {
			continue
		}
		deduplicated = append(deduplicated, wallet)
	}
	builder.transaction.Payloads = append(builder.transaction.Payloads, Payload{
		Id:           id,
		Data:         data,
		WalletAccess: deduplicated,
	})
	return id
}

func (builder *TxBuilder) SetPrevTxHash(prevTxId string) {
	builder.transaction.PrevTxId = prevTxId
}

func (builder *TxBuilder) SetRecipients(wallets []string) {
	builder.transaction.Recipients = wallets
}

func (builder *TxBuilder) SetMetaData(metaData *TransactionMetaData) {
	builder.transaction.MetaData = metaData
}

// Transport returns the assembled unsigned transaction.
func (builder *TxBuilder) Transport() *Transaction {
	return &builder.transaction
}

// SigningBytes is the canonical byte form a wallet signs: the JSON
// encoding of the transaction without TxId and Signature.
func (transaction *Transaction) SigningBytes() ([]byte, error) {
	unsigned := *transaction
	unsigned.TxId = ""
	unsigned.Signature = nil
	return json.Marshal(unsigned)
}

func contains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
