package registry

/*
The register: an append-only transaction store over tm-db. Transactions
are kept by id and indexed by instance id (in append order, which is the
chain order the engine's data aggregation depends on) and by blueprint
type for discovery.
*/

import (
	"encoding/json"
	"fmt"

	"github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/node"
	tmdb "github.com/tendermint/tm-db"

	"flowledger/engine"
	"flowledger/ledger"
)

type Store struct {
	db tmdb.DB
}

func NewStore(db tmdb.DB) *Store {
	return &Store{db: db}
}

func NewPersistentDB(configuration *config.Config) tmdb.DB {
	database, _ := node.DefaultDBProvider(
		&node.DBContext{
			ID:     "flowledger",
			Config: configuration,
		})
	return database
}

// ------------------------------------------------------------------------------------------------------------------- //
// WRITES

// SubmitTransaction appends a confirmed transaction and maintains the
// instance and blueprint indexes.
func (store *Store) SubmitTransaction(transaction *ledger.Transaction) error {
	if transaction.TxId == "" || transaction.MetaData == nil {
		return fmt.Errorf("transaction has no id or metadata")
	}
	registerId := transaction.MetaData.RegisterId
	raw, err := json.Marshal(transaction)
	if err != nil {
		return err
	}
	if err := store.db.Set(txKey(registerId, transaction.TxId), raw); err != nil {
		return err
	}
	if transaction.MetaData.InstanceId != "" {
		if err := store.appendIndex(instanceKey(registerId, transaction.MetaData.InstanceId), transaction.TxId); err != nil {
			return err
		}
	}
	if transaction.MetaData.TransactionType == ledger.TxBlueprint {
		if err := store.appendIndex(blueprintKey(registerId), transaction.TxId); err != nil {
			return err
		}
	}
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// READS

func (store *Store) GetTransactionById(registerId, txId string) (*ledger.Transaction, error) {
	raw, err := store.db.Get(txKey(registerId, txId))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("transaction %s on register %s: %w", txId, registerId, engine.ErrNotFound)
	}
	var transaction ledger.Transaction
	if err := json.Unmarshal(raw, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (store *Store) GetTransactionsByInstanceId(registerId, instanceId string) ([]*ledger.Transaction, error) {
	ids, err := store.readIndex(instanceKey(registerId, instanceId))
	if err != nil {
		return nil, err
	}
	return store.collect(registerId, ids)
}

func (store *Store) GetBlueprintTransactions(registerId string) ([]*ledger.Transaction, error) {
	ids, err := store.readIndex(blueprintKey(registerId))
	if err != nil {
		return nil, err
	}
	return store.collect(registerId, ids)
}

func (store *Store) collect(registerId string, ids []string) ([]*ledger.Transaction, error) {
	var transactions []*ledger.Transaction
	for _, id := range ids {
		transaction, err := store.GetTransactionById(registerId, id)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// INDEXES

func (store *Store) appendIndex(key []byte, txId string) error {
	ids, err := store.readIndex(key)
	if err != nil {
		return err
	}
	ids = append(ids, txId)
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return store.db.Set(key, raw)
}

func (store *Store) readIndex(key []byte) ([]string, error) {
	raw, err := store.db.Get(key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func txKey(registerId, txId string) []byte {
	return []byte("tx/" + registerId + "/" + txId)
}

func instanceKey(registerId, instanceId string) []byte {
	return []byte("instance/" + registerId + "/" + instanceId)
}

func blueprintKey(registerId string) []byte {
	return []byte("blueprints/" + registerId)
}
