package domain

import "errors"

var (
	// ErrSourceUnavailable is returned when the unspent source of a chain
	// fails to list the wallet's utxos.
	ErrSourceUnavailable = errors.New("unspent source unavailable")
	// ErrUtxoAlreadyLocked is returned when trying to lock a utxo already
	// reserved by some other in-flight trade.
	ErrUtxoAlreadyLocked = errors.New("utxo is already locked")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address is not valid")
	// ErrInsufficientFunds is returned when the free utxos of a wallet do not
	// cover the requested amount.
	ErrInsufficientFunds = errors.New("free utxos do not cover target amount")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrChainNotFound ...
	ErrChainNotFound = errors.New("chain not found")
)
