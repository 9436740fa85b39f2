package ledger

/*
Transactions are the chain links of a workflow instance. Every transaction
points at its predecessor through PrevTxId, carries zero or more payloads
individually addressed to wallets, and a metadata block with the routing
state (action id, next action id, instance id) plus unencrypted tracking
fields for register-side indexing.
*/

// ------------------------------------------------------------------------------------------------------------------- //
// TRANSACTION

type TransactionType string

const (
	TxDocket      TransactionType = "Docket"
	TxBlueprint   TransactionType = "Blueprint"
	TxAction      TransactionType = "Action"
	TxRejection   TransactionType = "Rejection"
	TxFile        TransactionType = "File"
	TxParticipant TransactionType = "Participant"
)

type Transaction struct {
	TxId         string               `json:"txId,omitempty"`
	PrevTxId     string               `json:"prevTxId,omitempty"`
	Version      uint32               `json:"version"`
	SenderWallet string               `json:"senderWallet,omitempty"`
	Recipients   []string             `json:"recipientsWallets,omitempty"`
	Payloads     []Payload            `json:"payloads,omitempty"`
	MetaData     *TransactionMetaData `json:"metaData,omitempty"`
	Signature    []byte               `json:"signature,omitempty"`
}

// ------------------------------------------------------------------------------------------------------------------- //
// PAYLOAD

/*	A Payload is one addressed data blob. Before sealing, Data holds the
	plaintext; a wallet custodian seals it into per-wallet ciphertexts
	keyed by wallet address. An empty WalletAccess list means the payload
	is unrestricted and stays in cleartext. */
type Payload struct {
	Id           uint32            `json:"id"`
	Data         []byte            `json:"data,omitempty"`
	Encrypted    map[string][]byte `json:"encrypted,omitempty"`
	WalletAccess []string          `json:"walletAccess,omitempty"`
}

// HasAccess reports whether the wallet may read the payload. Unrestricted
// payloads are readable by everyone.
func (payload *Payload) HasAccess(walletAddress string) bool {
	if len(payload.WalletAccess) == 0 {
		return true
	}
	for _, wallet := range payload.WalletAccess {
		if wallet == walletAddress {
			return true
		}
	}
	return false
}

// ------------------------------------------------------------------------------------------------------------------- //
// METADATA

/*	TransactionMetaData is created once per transaction and never mutated
	after submission. TrackingData serializes sorted by key, which Go's
	JSON encoder guarantees for string-keyed maps. */
type TransactionMetaData struct {
	TransactionType TransactionType   `json:"transactionType"`
	RegisterId      string            `json:"registerId"`
	BlueprintId     string            `json:"blueprintId,omitempty"`
	InstanceId      string            `json:"instanceId,omitempty"`
	ActionId        int               `json:"actionId,omitempty"`
	NextActionId    int               `json:"nextActionId,omitempty"`
	TrackingData    map[string]string `json:"trackingData,omitempty"`
}

// Terminal is the sentinel next-action id closing an instance.
const Terminal = -1
