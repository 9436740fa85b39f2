package engine

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"flowledger/blueprint"
	"flowledger/ledger"
)

// ------------------------------------------------------------------------------------------------------------------- //
// TRANSACTION REQUEST BUILDER

/*	TransactionRequestBuilder turns an action submission into the unsigned
	transaction continuing (or starting) a workflow instance. File-valued
	fields are hoisted into File sub-transactions first, because the parent
	transaction embeds their confirmed transaction ids; then calculations
	run, the data is partitioned into addressed payloads, and the routing
	metadata and chain link are assembled. */
type TransactionRequestBuilder struct {
	Files        FileRepository
	Payloads     *PayloadResolver
	Actions      ActionResolver
	Wallet       WalletClient
	Calculations *CalculationEngine
}

func NewTransactionRequestBuilder(files FileRepository, payloads *PayloadResolver, wallet WalletClient,
	calculations *CalculationEngine) *TransactionRequestBuilder {
	return &TransactionRequestBuilder{
		Files:        files,
		Payloads:     payloads,
		Wallet:       wallet,
		Calculations: calculations,
	}
}

// BuildTransactionRequest starts a new instance: the submission targets
// action 1 and a fresh instance id is generated.
func (builder *TransactionRequestBuilder) BuildTransactionRequest(bp *blueprint.Blueprint, submission *ActionSubmission) (*ledger.Transaction, error) {
	action, err := builder.Actions.ResolveNextAction(1, bp)
	if err != nil {
		return nil, err
	}
	trackingData := builder.Payloads.ResolveTrackingData(action.Disclosures, submission.Data)
	instanceId := uuid.NewString()
	updated, err := builder.buildAndSendFileTransactions(bp, action, submission)
	if err != nil {
		return nil, err
	}
	return builder.assemble(bp, action, updated, instanceId, trackingData)
}

// BuildTransactionRequestFromPreviousTransaction continues an instance:
// the instance id and target action come from the previous transaction's
// metadata, and its tracking data backfills keys the new submission did
// not set.
func (builder *TransactionRequestBuilder) BuildTransactionRequestFromPreviousTransaction(bp *blueprint.Blueprint, submission *ActionSubmission,
	previousTx *ledger.Transaction) (*ledger.Transaction, error) {
	if previousTx.MetaData == nil {
		return nil, &ResolutionError{Ref: "transaction " + previousTx.TxId, Reason: "previous transaction has no metadata"}
	}
	instanceId := previousTx.MetaData.InstanceId
	action, err := builder.Actions.ResolveNextAction(previousTx.MetaData.NextActionId, bp)
	if err != nil {
		return nil, err
	}
	trackingData := builder.Payloads.ResolveTrackingData(action.Disclosures, submission.Data)
	for key, value := range previousTx.MetaData.TrackingData {
		if trackingData[key] == "" {
			trackingData[key] = value
		}
	}
	updated, err := builder.buildAndSendFileTransactions(bp, action, submission)
	if err != nil {
		return nil, err
	}
	return builder.assemble(bp, action, updated, instanceId, trackingData)
}

// BuildRejectionRequest bounces a received action back to its sender. The
// metadata swaps the previous action/next-action pair so the instance
// rewinds one step, and the rejection data is readable only by the
// rejected transaction's sender.
func (builder *TransactionRequestBuilder) BuildRejectionRequest(previousTx *ledger.Transaction, submission *ActionSubmission) (*ledger.Transaction, error) {
	if previousTx.MetaData == nil {
		return nil, &ResolutionError{Ref: "transaction " + previousTx.TxId, Reason: "previous transaction has no metadata"}
	}
	switch previousTx.MetaData.TransactionType {
	case ledger.TxRejection:
		return nil, errors.New("cannot reject an action which has already been rejected")
	case ledger.TxAction:
	default:
		return nil, errors.New("cannot reject starting actions")
	}
	payload, err := json.Marshal(submission.Data)
	if err != nil {
		return nil, err
	}
	txBuilder := ledger.NewTxBuilder()
	txBuilder.SetPrevTxHash(submission.PreviousTxId)
	txBuilder.SetRecipients([]string{previousTx.SenderWallet})
	txBuilder.AddPayload(payload, []string{previousTx.SenderWallet})
	txBuilder.SetMetaData(&ledger.TransactionMetaData{
		TransactionType: ledger.TxRejection,
		RegisterId:      submission.RegisterId,
		BlueprintId:     previousTx.MetaData.BlueprintId,
		InstanceId:      previousTx.MetaData.InstanceId,
		ActionId:        previousTx.MetaData.NextActionId,
		NextActionId:    previousTx.MetaData.ActionId,
		TrackingData:    previousTx.MetaData.TrackingData,
	})
	return txBuilder.Transport(), nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// ASSEMBLY

func (builder *TransactionRequestBuilder) assemble(bp *blueprint.Blueprint, action *blueprint.Action, submission *ActionSubmission,
	instanceId string, trackingData map[string]string) (*ledger.Transaction, error) {
	updatedData, err := builder.Calculations.RunActionCalculations(action, submission, instanceId)
	if err != nil {
		return nil, err
	}
	txBuilder, err := builder.Payloads.AddParticipantPayloadsToTransaction(bp, action.Disclosures, updatedData, action.Sender)
	if err != nil {
		return nil, err
	}
	// routing evaluates against the raw submitted data, not the
	// calculation output
	isFinal, nextActionId := builder.Actions.IsFinalAction(action, bp, submission.Data)

	txBuilder.SetPrevTxHash(submission.PreviousTxId)
	recipients, err := builder.resolveRecipients(bp, action, nextActionId, isFinal)
	if err != nil {
		return nil, err
	}
	if len(recipients) > 0 {
		txBuilder.SetRecipients(recipients)
	}
	txBuilder.SetMetaData(&ledger.TransactionMetaData{
		TransactionType: ledger.TxAction,
		RegisterId:      submission.RegisterId,
		BlueprintId:     submission.BlueprintId,
		InstanceId:      instanceId,
		ActionId:        action.Id,
		NextActionId:    nextActionId,
		TrackingData:    trackingData,
	})
	return txBuilder.Transport(), nil
}

// resolveRecipients computes the wallets a confirmed transaction is routed
// to: the next action's sender plus the additional recipients, or the
// additional recipients alone when the instance terminates here.
func (builder *TransactionRequestBuilder) resolveRecipients(bp *blueprint.Blueprint, action *blueprint.Action,
	nextActionId int, isFinal bool) ([]string, error) {
	var recipients []string
	if !isFinal {
		nextAction, err := builder.Actions.ResolveNextAction(nextActionId, bp)
		if err != nil {
			return nil, err
		}
		nextWallet, err := builder.Actions.ResolveParticipantWalletAddress(nextAction.Sender, bp)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, nextWallet)
	}
	for _, recipient := range action.AdditionalRecipients {
		wallet, err := builder.Actions.ResolveParticipantWalletAddress(recipient, bp)
		if err != nil {
			return nil, err
		}
		if !containsPointer(recipients, wallet) {
			recipients = append(recipients, wallet)
		}
	}
	return recipients, nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// FILE SUB-TRANSACTIONS

// buildAndSendFileTransactions hoists every file-valued submission field
// into its own confirmed File transaction and rewrites the field to
// reference the resulting transaction id. Must complete before the parent
// transaction is assembled.
func (builder *TransactionRequestBuilder) buildAndSendFileTransactions(bp *blueprint.Blueprint, action *blueprint.Action,
	submission *ActionSubmission) (*ActionSubmission, error) {
	fileFields := fileFieldsInSchema(action)
	if len(fileFields) == 0 {
		return submission, nil
	}
	updated := *submission
	updated.Data = copyDocument(submission.Data)

	for _, fieldId := range fileFields {
		metaData, ok := fileMetaDataFor(updated.Data, fieldId)
		if !ok {
			continue
		}
		txBuilder, err := builder.Payloads.AddFilePayloadToTransaction(bp, action.Disclosures, metaData.Name, fieldId)
		if err != nil {
			return nil, err
		}
		txBuilder.SetPrevTxHash(submission.PreviousTxId)
		txBuilder.SetMetaData(&ledger.TransactionMetaData{
			TransactionType: ledger.TxFile,
			RegisterId:      submission.RegisterId,
			BlueprintId:     submission.BlueprintId,
			ActionId:        action.Id,
			TrackingData: map[string]string{
				"fileName":      metaData.Name,
				"fileType":      metaData.Type,
				"fileSize":      strconv.FormatInt(metaData.Size, 10),
				"fileExtension": metaData.Extension,
			},
		})
		confirmed, err := builder.Wallet.SignAndSendTransaction(txBuilder.Transport(), submission.WalletAddress)
		if err != nil {
			return nil, upstream("wallet: sign and send file transaction", err)
		}
		if err := builder.Files.DeleteFile(metaData.Name); err != nil {
			return nil, upstream("file repository: delete "+metaData.Name, err)
		}
		metaData.TransactionId = confirmed.TxId
		updated.Data[fieldId] = metaData.document()
	}
	return &updated, nil
}

// fileFieldsInSchema scans the action's first data schema for object-typed
// properties that declare a fileName sub-property. Returned field ids are
// the schema $id (falling back to the property name), sorted for
// deterministic submission order.
func fileFieldsInSchema(action *blueprint.Action) []string {
	if len(action.DataSchemas) == 0 {
		return nil
	}
	var schema struct {
		Properties map[string]struct {
			Id         string                     `json:"$id"`
			Type       string                     `json:"type"`
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(action.DataSchemas[0], &schema); err != nil {
		return nil
	}
	var fields []string
	for name, property := range schema.Properties {
		if property.Type != "object" {
			continue
		}
		if _, ok := property.Properties["fileName"]; !ok {
			continue
		}
		if property.Id != "" {
			fields = append(fields, property.Id)
		} else {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

func fileMetaDataFor(data map[string]interface{}, fieldId string) (*FileMetaData, bool) {
	field, ok := data[fieldId]
	if !ok {
		return nil, false
	}
	document, ok := field.(map[string]interface{})
	if !ok {
		return nil, false
	}
	if _, ok := document["fileName"]; !ok {
		return nil, false
	}
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, false
	}
	var metaData FileMetaData
	if err := json.Unmarshal(raw, &metaData); err != nil {
		return nil, false
	}
	return &metaData, true
}

func (metaData *FileMetaData) document() map[string]interface{} {
	raw, _ := json.Marshal(metaData)
	var document map[string]interface{}
	_ = json.Unmarshal(raw, &document)
	return document
}
