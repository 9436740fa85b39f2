package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/btcsuite/btcd/btcec"
	ecies "github.com/ecies/go"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ------------------------------------------------------------------------------------------------------------------- //
// KEYS

// GenerateKey creates a fresh secp256k1 key pair. The same key signs
// transactions and receives ECIES-encrypted payloads.
func GenerateKey() (privKey []byte, pubKey []byte, err error) {
	key, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, nil, err
	}
	return key.Serialize(), key.PubKey().SerializeUncompressed(), nil
}

// WalletAddress derives the published address of a wallet from its public
// key: the "ws1" prefix over the trailing twenty bytes of the Keccak-256
// digest of the raw curve point.
func WalletAddress(pubKey []byte) (string, error) {
	if err := CheckPubKey(pubKey); err != nil {
		return "", err
	}
	digest := ethcrypto.Keccak256(pubKey[1:])
	return "ws1" + hex.EncodeToString(digest[12:]), nil
}

func CheckPubKey(pubKey []byte) error {
	if _, err := btcec.ParsePubKey(pubKey, btcec.S256()); err != nil {
		return errors.New("invalid secp256k1 public key")
	}
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// SIGNATURES

func Sign(privKey, message []byte) (signature []byte, err error) {
	hash := sha256.Sum256(message)
	key, _ := btcec.PrivKeyFromBytes(btcec.S256(), privKey)
	sign, err := key.Sign(hash[:])
	if err != nil {
		return nil, err
	}
	return sign.Serialize(), nil
}

func Verify(pubKey, message []byte, signature []byte) (signed bool) {
	hash := sha256.Sum256(message)
	key, err := btcec.ParsePubKey(pubKey, btcec.S256())
	if err != nil {
		return false
	}
	sign, err := btcec.ParseSignature(signature, btcec.S256())
	if err != nil {
		return false
	}
	return sign.Verify(hash[:], key)
}

// ------------------------------------------------------------------------------------------------------------------- //
// ENCRYPTION

func Encrypt(pubKey, message []byte) (encrypted []byte, err error) {
	key, err := ecies.NewPublicKeyFromBytes(pubKey)
	if err != nil {
		return nil, err
	}
	return ecies.Encrypt(key, message)
}

func Decrypt(privKey, encrypted []byte) (message []byte, err error) {
	key := ecies.NewPrivateKeyFromBytes(privKey)
	return ecies.Decrypt(key, encrypted)
}
