package elgamal_test

import (
	"encoding/hex"
	"fmt"

	"github.com/canopy-network/canopy/lib/elgamal"
)

// Lit and the Auditor each hold a seed. They exchange one artifact apiece,
// publish their key shares and then jointly decrypt.
func Example() {
	engine, err := elgamal.NewEngine(elgamal.DefaultConfig())
	if err != nil {
		panic(err)
	}

	seedLit, _ := hex.DecodeString("abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890")
	seedAuditor, _ := hex.DecodeString("1111222233334444555566667777888899990000aaaabbbbccccddddeeeeffff")

	forAuditor, err := engine.PartyAKeygen(seedLit)
	if err != nil {
		panic(err)
	}
	forLit, err := engine.PartyBKeygen(seedAuditor)
	if err != nil {
		panic(err)
	}

	shareLit, err := engine.PartyAPubkeyShare(seedLit, forLit)
	if err != nil {
		panic(err)
	}
	shareAuditor, err := engine.PartyBPubkeyShare(seedAuditor, forAuditor)
	if err != nil {
		panic(err)
	}
	pub, err := engine.SharedPublicKey([]elgamal.Point{shareLit, shareAuditor})
	if err != nil {
		panic(err)
	}

	ciphertext, err := engine.EncryptMessage("12345678901234567890", pub)
	if err != nil {
		panic(err)
	}

	partial, err := engine.PartyADecrypt(seedLit, forLit, ciphertext.C1)
	if err != nil {
		panic(err)
	}
	m, err := engine.PartyBDecrypt(seedAuditor, forAuditor, ciphertext, partial)
	if err != nil {
		panic(err)
	}

	message, err := engine.PointToMessage(m)
	if err != nil {
		panic(err)
	}
	fmt.Println(message)
	// Output: 12345678901234567890
}
