package engine

import (
	"io"

	"flowledger/ledger"
)

// ------------------------------------------------------------------------------------------------------------------- //
// COLLABORATORS

// RegisterClient reads the append-only transaction store. Implementations
// must return transactions for an instance in chain order: the last-write-
// wins data merge depends on it.
type RegisterClient interface {
	GetTransactionById(registerId, txId string) (*ledger.Transaction, error)
	GetTransactionsByInstanceId(registerId, instanceId string) ([]*ledger.Transaction, error)
	GetBlueprintTransactions(registerId string) ([]*ledger.Transaction, error)
}

// WalletClient is the key custodian. DecryptTransaction returns one entry
// per payload the wallet can read, in payload order, empty when none.
// SignAndSendTransaction seals, signs and submits a transaction and
// returns the confirmed form with its ledger-assigned TxId.
type WalletClient interface {
	DecryptTransaction(transaction *ledger.Transaction, walletAddress string) ([][]byte, error)
	SignAndSendTransaction(transaction *ledger.Transaction, walletAddress string) (*ledger.Transaction, error)
}

// FileRepository is the blob store holding uploaded files until they are
// folded into File transactions.
type FileRepository interface {
	GetFile(name string) (io.ReadCloser, error)
	DeleteFile(name string) error
}

// ------------------------------------------------------------------------------------------------------------------- //
// SUBMISSION

/*	An ActionSubmission is the transient unit of work: one caller, one
	action, one data document. PreviousTxId equal to the blueprint id
	starts a new instance, anything else continues the chain behind that
	transaction. */
type ActionSubmission struct {
	PreviousTxId  string                 `json:"previousTxId"`
	BlueprintId   string                 `json:"blueprintId"`
	WalletAddress string                 `json:"walletAddress"`
	RegisterId    string                 `json:"registerId"`
	Data          map[string]interface{} `json:"data"`
}

// FileMetaData is the shape a file-valued submission field carries before
// its content is hoisted into a File transaction.
type FileMetaData struct {
	Name          string `json:"fileName,omitempty"`
	Type          string `json:"fileType,omitempty"`
	Extension     string `json:"fileExtension,omitempty"`
	Size          int64  `json:"fileSize,omitempty"`
	TransactionId string `json:"fileTransactionId,omitempty"`
}
