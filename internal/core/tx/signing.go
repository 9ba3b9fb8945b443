package tx

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrBadSignature is returned when a signature is missing or does not verify.
var ErrBadSignature = errors.New("bad signature")

// canonical encodes t as JSON with object keys sorted. The signature is
// dropped unless withSignature is set.
func canonical(t Transaction, withSignature bool) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if !withSignature {
		delete(fields, "Signature")
	}
	return json.Marshal(fields)
}

// SigningPayload returns the bytes a signer signs: the canonical JSON form
// of t without its signature.
func SigningPayload(t Transaction) ([]byte, error) {
	return canonical(t, false)
}

// Sign signs t with key, which must belong to the transaction account.
func Sign(t Transaction, key solana.PrivateKey) error {
	c := t.GetCommon()
	if !key.PublicKey().Equals(c.Account) {
		return fmt.Errorf("key %s does not match account %s", key.PublicKey(), c.Account)
	}
	payload, err := SigningPayload(t)
	if err != nil {
		return err
	}
	sig, err := key.Sign(payload)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	c.Signature = sig.String()
	return nil
}

// VerifySignature checks the signature of t against its account.
func VerifySignature(t Transaction) error {
	c := t.GetCommon()
	if c.Signature == "" {
		return fmt.Errorf("%w: missing", ErrBadSignature)
	}
	sig, err := solana.SignatureFromBase58(c.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	payload, err := SigningPayload(t)
	if err != nil {
		return err
	}
	if !sig.Verify(c.Account, payload) {
		return ErrBadSignature
	}
	return nil
}

// Hash returns the transaction identifier, the SHA-256 of the canonical form
// including the signature.
func Hash(t Transaction) ([32]byte, error) {
	data, err := canonical(t, true)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
