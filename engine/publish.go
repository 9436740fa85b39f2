package engine

import (
	"encoding/json"

	"flowledger/blueprint"
	"flowledger/ledger"
)

// ------------------------------------------------------------------------------------------------------------------- //
// BLUEPRINT PUBLICATION

// BuildBlueprintPublishRequest wraps a validated blueprint in an unsigned
// Blueprint transaction whose single payload is readable by every
// participant wallet. The confirmed transaction id becomes the blueprint's
// published identity.
func BuildBlueprintPublishRequest(bp *blueprint.Blueprint, registerId string) (*ledger.Transaction, error) {
	if err := bp.Check(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(bp)
	if err != nil {
		return nil, err
	}
	var wallets []string
	for i := range bp.Participants {
		wallets = append(wallets, bp.Participants[i].WalletAddress)
	}
	builder := ledger.NewTxBuilder()
	builder.AddPayload(payload, wallets)
	builder.SetRecipients(wallets)
	builder.SetMetaData(&ledger.TransactionMetaData{
		TransactionType: ledger.TxBlueprint,
		RegisterId:      registerId,
		BlueprintId:     bp.Id,
	})
	return builder.Transport(), nil
}
