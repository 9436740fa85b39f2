package wallet

/*
An in-process key custodian. It holds the secp256k1 keys of the wallets
created through it, seals outgoing payloads to their wallet-access lists
with ECIES, signs the transaction and submits it to the register, and
decrypts whatever payloads a held wallet is entitled to read.
*/

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"flowledger/crypto"
	"flowledger/ledger"
)

// Register is the submission side of the transaction store.
type Register interface {
	SubmitTransaction(transaction *ledger.Transaction) error
}

type keyPair struct {
	privKey []byte
	pubKey  []byte
}

type Service struct {
	register Register
	keys     map[string]keyPair
}

func NewService(register Register) *Service {
	return &Service{register: register, keys: make(map[string]keyPair)}
}

// CreateWallet generates a key pair and returns the published address.
func (service *Service) CreateWallet() (string, error) {
	privKey, pubKey, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	address, err := crypto.WalletAddress(pubKey)
	if err != nil {
		return "", err
	}
	service.keys[address] = keyPair{privKey: privKey, pubKey: pubKey}
	return address, nil
}

// DecryptTransaction returns the plaintext of every payload the wallet
// can read, in payload order. Unrestricted payloads pass through as-is.
func (service *Service) DecryptTransaction(transaction *ledger.Transaction, walletAddress string) ([][]byte, error) {
	key, held := service.keys[walletAddress]
	if !held {
		return nil, fmt.Errorf("wallet %s is not held by this service", walletAddress)
	}
	var blobs [][]byte
	for i := range transaction.Payloads {
		payload := &transaction.Payloads[i]
		if len(payload.WalletAccess) == 0 {
			blobs = append(blobs, payload.Data)
			continue
		}
		encrypted, entitled := payload.Encrypted[walletAddress]
		if !entitled {
			continue
		}
		plain, err := crypto.Decrypt(key.privKey, encrypted)
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", payload.Id, err)
		}
		blobs = append(blobs, plain)
	}
	return blobs, nil
}

// SignAndSendTransaction seals each restricted payload for its access
// list, signs the transaction with the sending wallet, submits it to the
// register and returns the confirmed transaction carrying its assigned id.
func (service *Service) SignAndSendTransaction(transaction *ledger.Transaction, walletAddress string) (*ledger.Transaction, error) {
	key, held := service.keys[walletAddress]
	if !held {
		return nil, fmt.Errorf("wallet %s is not held by this service", walletAddress)
	}

	sealed := *transaction
	sealed.Payloads = make([]ledger.Payload, len(transaction.Payloads))
	copy(sealed.Payloads, transaction.Payloads)
	for i := range sealed.Payloads {
		payload := &sealed.Payloads[i]
		if len(payload.WalletAccess) == 0 {
			continue
		}
		payload.Encrypted = make(map[string][]byte, len(payload.WalletAccess))
		for _, wallet := range payload.WalletAccess {
			recipient, held := service.keys[wallet]
			if !held {
				return nil, fmt.Errorf("cannot seal payload %d: wallet %s is not held by this service", payload.Id, wallet)
			}
			encrypted, err := crypto.Encrypt(recipient.pubKey, payload.Data)
			if err != nil {
				return nil, fmt.Errorf("payload %d: %w", payload.Id, err)
			}
			payload.Encrypted[wallet] = encrypted
		}
		payload.Data = nil
	}

	sealed.SenderWallet = walletAddress
	signingBytes, err := sealed.SigningBytes()
	if err != nil {
		return nil, err
	}
	signature, err := crypto.Sign(key.privKey, signingBytes)
	if err != nil {
		return nil, err
	}
	sealed.Signature = signature
	txHash := sha256.Sum256(append(signingBytes, signature...))
	sealed.TxId = hex.EncodeToString(txHash[:])

	if err := service.register.SubmitTransaction(&sealed); err != nil {
		return nil, err
	}
	return &sealed, nil
}
