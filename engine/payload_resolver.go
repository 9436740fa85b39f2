package engine

import (
	"encoding/json"
	"io/ioutil"

	"github.com/go-openapi/jsonpointer"

	"flowledger/blueprint"
	"flowledger/ledger"
)

// ------------------------------------------------------------------------------------------------------------------- //
// PAYLOAD RESOLVER

/*	PayloadResolver partitions a submitted data document into per-recipient
	payloads according to an action's disclosures, and aggregates the data
	a wallet has been shown across an instance's transaction history.
	Disclosure selectors that do not resolve against the document are
	skipped, never failed: blueprints may reference optional fields. */
type PayloadResolver struct {
	Files FileRepository
}

func NewPayloadResolver(files FileRepository) *PayloadResolver {
	return &PayloadResolver{Files: files}
}

// AddParticipantPayloadsToTransaction builds one payload per non-tracking
// disclosure, each holding only the fields that disclosure addresses.
// PublicData payloads stay unrestricted; participant payloads are
// readable by the target wallet and the sender wallet.
func (resolver *PayloadResolver) AddParticipantPayloadsToTransaction(bp *blueprint.Blueprint, disclosures []blueprint.Disclosure,
	data map[string]interface{}, senderAddress string) (*ledger.TxBuilder, error) {
	builder := ledger.NewTxBuilder()
	for _, disclosure := range disclosures {
		switch disclosure.Target() {
		case blueprint.TargetTrackingData:
			continue
		case blueprint.TargetPublicData:
			payload, err := buildDataPayload(disclosure, data)
			if err != nil {
				return nil, err
			}
			builder.AddPayload(payload, nil)
		case blueprint.TargetParticipant:
			payload, err := buildDataPayload(disclosure, data)
			if err != nil {
				return nil, err
			}
			target, err := resolveWallet(disclosure.ParticipantAddress, bp)
			if err != nil {
				return nil, err
			}
			sender, err := resolveWallet(senderAddress, bp)
			if err != nil {
				return nil, err
			}
			builder.AddPayload(payload, []string{target, sender})
		}
	}
	return builder, nil
}

// AddFilePayloadToTransaction builds a single-payload transaction holding
// the raw file, readable by every participant whose disclosure selectors
// name the file field.
func (resolver *PayloadResolver) AddFilePayloadToTransaction(bp *blueprint.Blueprint, disclosures []blueprint.Disclosure,
	fileName, fileFieldId string) (*ledger.TxBuilder, error) {
	stream, err := resolver.Files.GetFile(fileName)
	if err != nil {
		return nil, upstream("file repository: get "+fileName, err)
	}
	defer stream.Close()
	fileBinary, err := ioutil.ReadAll(stream)
	if err != nil {
		return nil, upstream("file repository: read "+fileName, err)
	}
	var payloadWallets []string
	for _, disclosure := range disclosures {
		if disclosure.Target() != blueprint.TargetParticipant {
			continue
		}
		if !containsPointer(disclosure.DataPointers, fileFieldId) {
			continue
		}
		wallet, err := resolveWallet(disclosure.ParticipantAddress, bp)
		if err != nil {
			return nil, err
		}
		payloadWallets = append(payloadWallets, wallet)
	}
	builder := ledger.NewTxBuilder()
	builder.AddPayload(fileBinary, payloadWallets)
	return builder, nil
}

// GetAllPreviousPayloadsForWallet merges every payload the wallet can
// decrypt across the supplied transactions into one document. Later
// transactions overwrite same-named keys from earlier ones, so callers
// must pass the transactions in chain order.
func (resolver *PayloadResolver) GetAllPreviousPayloadsForWallet(walletAddress string, previousTransactions []*ledger.Transaction,
	wallet WalletClient) (map[string]interface{}, error) {
	var previousTransactionData [][]byte
	for _, transaction := range previousTransactions {
		blobs, err := wallet.DecryptTransaction(transaction, walletAddress)
		if err != nil {
			return nil, upstream("wallet: decrypt transaction "+transaction.TxId, err)
		}
		previousTransactionData = append(previousTransactionData, blobs...)
	}
	combined := make(map[string]interface{})
	for _, blob := range previousTransactionData {
		var payloadKvp map[string]interface{}
		if err := json.Unmarshal(blob, &payloadKvp); err != nil {
			continue // file payloads and other non-document blobs
		}
		for key, value := range payloadKvp {
			combined[key] = value
		}
	}
	return combined, nil
}

// ResolveTrackingData collects the fields of every TrackingData disclosure
// into a flat map keyed by the original, un-normalized selector. Values
// are the field's string form; non-string fields keep their JSON text.
func (resolver *PayloadResolver) ResolveTrackingData(disclosures []blueprint.Disclosure, data map[string]interface{}) map[string]string {
	trackingData := make(map[string]string)
	for _, disclosure := range disclosures {
		if disclosure.Target() != blueprint.TargetTrackingData {
			continue
		}
		for _, pointer := range disclosure.DataPointers {
			value, ok := evalPointer(pointer, data)
			if !ok {
				continue
			}
			trackingData[pointer] = stringify(value)
		}
	}
	return trackingData
}

// ------------------------------------------------------------------------------------------------------------------- //
// SELECTORS

func buildDataPayload(disclosure blueprint.Disclosure, data map[string]interface{}) ([]byte, error) {
	fields := make(map[string]interface{})
	for _, pointer := range disclosure.DataPointers {
		value, ok := evalPointer(pointer, data)
		if !ok {
			continue
		}
		fields[blueprint.PointerField(pointer)] = value
	}
	return json.Marshal(fields)
}

func evalPointer(pointer string, data map[string]interface{}) (interface{}, bool) {
	normalized := blueprint.NormalizePointer(pointer)
	normalized = blueprint.NormalizePointer(blueprint.PointerField(normalized))
	parsed, err := jsonpointer.New(normalized)
	if err != nil {
		return nil, false
	}
	value, _, err := parsed.Get(data)
	if err != nil {
		return nil, false
	}
	return value, true
}

func resolveWallet(participantId string, bp *blueprint.Blueprint) (string, error) {
	if len(participantId) >= len(blueprint.WalletAddressPrefix) && participantId[:len(blueprint.WalletAddressPrefix)] == blueprint.WalletAddressPrefix {
		return participantId, nil
	}
	for i := range bp.Participants {
		if bp.Participants[i].Id == participantId && bp.Participants[i].WalletAddress != "" {
			return bp.Participants[i].WalletAddress, nil
		}
	}
	return "", &ResolutionError{Ref: "participant " + participantId, Reason: "no such participant in the blueprint"}
}

func containsPointer(pointers []string, fieldId string) bool {
	for _, pointer := range pointers {
		if pointer == fieldId {
			return true
		}
	}
	return false
}

func stringify(value interface{}) string {
	if text, ok := value.(string); ok {
		return text
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}
