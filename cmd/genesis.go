package cmd

import (
	"encoding/hex"

	"github.com/tendermint/tendermint/crypto/ed25519"
)

var genValidators map[string]int64 = map[string]int64{
	"c468322724705d01fe22c6727890a9a9293d006bc873e73342d85fb36716642c": 10,
}
var genValidatorKeys []ed25519.PubKeyEd25519

func init() {
	for key := range genValidators {
		var validatorKey ed25519.PubKeyEd25519
		bytes, _ := hex.DecodeString(key)
		copy(validatorKey[:], bytes)
		genValidatorKeys = append(genValidatorKeys, validatorKey)
	}
}
