package registry

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	tendermint "github.com/tendermint/tendermint/abci/types"

	"flowledger/messages"
)

/*
The register exposed as an ABCI application: DeliverTx appends confirmed
workflow transactions to the store, Query serves them back by id, by
instance id, and by blueprint type. The app hash chains the ids of the
transactions delivered in the last block.
*/

type registerChain struct {
	Height  int64
	AppHash []byte
	store   *Store
}

var _ tendermint.Application = (*registerChain)(nil)

func NewRegisterChain(store *Store) *registerChain {
	return &registerChain{
		Height: 0,
		store:  store,
	}
}

func (chain *registerChain) Info(requestInfo tendermint.RequestInfo) tendermint.ResponseInfo {
	responseInfo := tendermint.ResponseInfo{
		Data:             "Selective-disclosure workflow register",
		Version:          "V1",
		AppVersion:       1,
		LastBlockHeight:  chain.Height,
		LastBlockAppHash: chain.AppHash,
	}
	return responseInfo
}

func (chain *registerChain) SetOption(requestSetOption tendermint.RequestSetOption) tendermint.ResponseSetOption {
	responseSetOption := tendermint.ResponseSetOption{
		Code: 0,
		Log:  "",
		Info: "",
	}
	return responseSetOption
}

func (chain *registerChain) Query(requestQuery tendermint.RequestQuery) tendermint.ResponseQuery {
	data := make([]byte, base64.StdEncoding.DecodedLen(len(requestQuery.Data)))
	_, _ = base64.StdEncoding.Decode(data, requestQuery.Data)
	data = bytes.Trim(data, "\x00")
	var query messages.Query
	_ = json.Unmarshal(data, &query)
	var value []byte
	switch query.QrType {
	case messages.QueryTransaction:
		transaction, err := chain.store.GetTransactionById(query.RegisterId, query.TxId)
		if err == nil {
			value, _ = json.Marshal(transaction)
		}
	case messages.QueryInstance:
		transactions, err := chain.store.GetTransactionsByInstanceId(query.RegisterId, query.InstanceId)
		if err == nil {
			value, _ = json.Marshal(transactions)
		}
	case messages.QueryBlueprints:
		transactions, err := chain.store.GetBlueprintTransactions(query.RegisterId)
		if err == nil {
			value, _ = json.Marshal(transactions)
		}
	}
	responseQuery := tendermint.ResponseQuery{
		Code:      uint32(0),
		Log:       "",
		Info:      "",
		Index:     -1,
		Key:       requestQuery.Data,
		Value:     value,
		Proof:     nil,
		Height:    0,
		Codespace: "",
	}
	return responseQuery
}

func (chain *registerChain) CheckTx(requestCheckTx tendermint.RequestCheckTx) tendermint.ResponseCheckTx {
	responseCheckTx := tendermint.ResponseCheckTx{
		Code:      uint32(0),
		Data:      nil,
		Log:       "",
		Info:      "",
		GasWanted: 0,
		GasUsed:   0,
		Events:    nil,
		Codespace: "",
	}
	return responseCheckTx
}

func (chain *registerChain) InitChain(requestInitChain tendermint.RequestInitChain) tendermint.ResponseInitChain {
	responseInitChain := tendermint.ResponseInitChain{
		ConsensusParams: nil,
		Validators:      nil,
	}
	return responseInitChain
}

func (chain *registerChain) BeginBlock(requestBeginBlock tendermint.RequestBeginBlock) tendermint.ResponseBeginBlock {
	responseBeginBlock := tendermint.ResponseBeginBlock{
		Events: nil,
	}
	return responseBeginBlock
}

func (chain *registerChain) DeliverTx(requestDeliverTx tendermint.RequestDeliverTx) tendermint.ResponseDeliverTx {
	tx := make([]byte, base64.StdEncoding.DecodedLen(len(requestDeliverTx.Tx)))
	_, _ = base64.StdEncoding.Decode(tx, requestDeliverTx.Tx)
	tx = bytes.Trim(tx, "\x00")
	var envelope messages.Envelope
	_ = json.Unmarshal(tx, &envelope)
	code := uint32(0)
	log := ""
	switch envelope.TxType {
	case messages.TxSubmit:
		if err := chain.store.SubmitTransaction(envelope.Transaction); err != nil {
			code = uint32(1)
			log = err.Error()
		} else {
			hash := sha256.Sum256(append(chain.AppHash, []byte(envelope.Transaction.TxId)...))
			chain.AppHash = hash[:]
		}
	}
	responseDeliverTx := tendermint.ResponseDeliverTx{
		Code:      code,
		Data:      nil,
		Log:       log,
		Info:      "",
		GasWanted: 0,
		GasUsed:   0,
		Events:    nil,
		Codespace: "",
	}
	return responseDeliverTx
}

func (chain *registerChain) EndBlock(requestEndBlock tendermint.RequestEndBlock) tendermint.ResponseEndBlock {
	responseEndBlock := tendermint.ResponseEndBlock{
		ValidatorUpdates:      nil,
		ConsensusParamUpdates: nil,
		Events:                nil,
	}
	return responseEndBlock
}

func (chain *registerChain) Commit() tendermint.ResponseCommit {
	chain.Height++
	responseCommit := tendermint.ResponseCommit{
		Data:         chain.AppHash,
		RetainHeight: 0,
	}
	return responseCommit
}
