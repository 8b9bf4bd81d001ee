package domain

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
)

// hash160Len is the size of the pubkey or script hash that follows the
// version prefix in a decoded address.
const hash160Len = 20

// AddressType is the kind of script an address pays to.
type AddressType int

const (
	AddressTypeUnknown AddressType = iota
	AddressTypePubKeyHash
	AddressTypeScriptHash
)

func (t AddressType) String() string {
	switch t {
	case AddressTypePubKeyHash:
		return "p2pkh"
	case AddressTypeScriptHash:
		return "p2sh"
	default:
		return "unknown"
	}
}

// AddressPrefixes holds the version bytes a chain prepends to the hash of
// P2PKH and P2SH addresses.
type AddressPrefixes struct {
	PubKeyHash []byte
	ScriptHash []byte
}

// Validate makes sure both prefixes are defined.
func (p AddressPrefixes) Validate() error {
	if len(p.PubKeyHash) <= 0 {
		return fmt.Errorf("missing pubkey hash address prefix")
	}
	if len(p.ScriptHash) <= 0 {
		return fmt.Errorf("missing script hash address prefix")
	}
	return nil
}

// NewAddressPrefixesFromHex parses the hex encoded P2PKH and P2SH prefixes.
func NewAddressPrefixesFromHex(pubKeyHash, scriptHash string) (*AddressPrefixes, error) {
	pkh, err := hex.DecodeString(pubKeyHash)
	if err != nil {
		return nil, fmt.Errorf("invalid pubkey hash prefix: %s", err)
	}
	sh, err := hex.DecodeString(scriptHash)
	if err != nil {
		return nil, fmt.Errorf("invalid script hash prefix: %s", err)
	}
	prefixes := &AddressPrefixes{pkh, sh}
	if err := prefixes.Validate(); err != nil {
		return nil, err
	}
	return prefixes, nil
}

// NewAddressPrefixesFromNetwork returns the prefixes of one of the bitcoin
// networks known to btcd, ie. mainnet, testnet3, regtest, simnet or signet.
func NewAddressPrefixesFromNetwork(name string) (*AddressPrefixes, error) {
	var params *chaincfg.Params
	switch name {
	case chaincfg.MainNetParams.Name:
		params = &chaincfg.MainNetParams
	case chaincfg.TestNet3Params.Name:
		params = &chaincfg.TestNet3Params
	case chaincfg.RegressionNetParams.Name:
		params = &chaincfg.RegressionNetParams
	case chaincfg.SimNetParams.Name:
		params = &chaincfg.SimNetParams
	case chaincfg.SigNetParams.Name:
		params = &chaincfg.SigNetParams
	default:
		return nil, fmt.Errorf("unknown network %s", name)
	}
	return &AddressPrefixes{
		PubKeyHash: []byte{params.PubKeyHashAddrID},
		ScriptHash: []byte{params.ScriptHashAddrID},
	}, nil
}

// ClassifyAddress decodes the given Base58Check address and returns the
// type of the matching prefix, or AddressTypeUnknown if the address can't be
// decoded or matches none of them.
func ClassifyAddress(addr string, prefixes AddressPrefixes) AddressType {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return AddressTypeUnknown
	}
	if hasPrefix(version, payload, prefixes.PubKeyHash) {
		return AddressTypePubKeyHash
	}
	if hasPrefix(version, payload, prefixes.ScriptHash) {
		return AddressTypeScriptHash
	}
	return AddressTypeUnknown
}

// ValidateAddress returns whether the address is a valid P2PKH or P2SH
// address for the given prefixes.
func ValidateAddress(addr string, prefixes AddressPrefixes) bool {
	return ClassifyAddress(addr, prefixes) != AddressTypeUnknown
}

// hasPrefix compares the version byte followed by everything but the
// trailing hash of payload against the prefix. Payloads too short to hold
// prefix and hash never match.
func hasPrefix(version byte, payload, prefix []byte) bool {
	if len(prefix) <= 0 || 1+len(payload) < len(prefix)+hash160Len {
		return false
	}
	if prefix[0] != version {
		return false
	}
	return bytes.Equal(payload[:len(payload)-hash160Len], prefix[1:])
}
