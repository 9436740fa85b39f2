package messages

import (
	"flowledger/ledger"
)

type EnvelopeType string

const (
	TxSubmit EnvelopeType = "TxSubmit"
)

type Envelope struct {
	TxType EnvelopeType

	Transaction *ledger.Transaction
}

type QueryType string

const (
	QueryTransaction QueryType = "QueryTransaction"
	QueryInstance    QueryType = "QueryInstance"
	QueryBlueprints  QueryType = "QueryBlueprints"
)

type Query struct {
	QrType QueryType

	RegisterId string
	TxId       string
	InstanceId string
}
