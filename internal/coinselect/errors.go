// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coinselect

// Kind enumerates the fatal, non-retryable composition errors (spec §7).
// These carry only an identifier, never a wrapped source stack trace.
type Kind int

const (
	// KindBalanceInsufficient: the Selection Loop exhausted `remaining`
	// with assets still unsatisfied, or the Finalizer's max-ADA case
	// would drop below min_ada.
	KindBalanceInsufficient Kind = iota
	// KindValueTooSmall: an explicit non-max, tokenless output's ADA
	// amount is below min_ada.
	KindValueTooSmall
	// KindUnsupportedCertificateType: a certificate tag outside {0,1,2,3}.
	KindUnsupportedCertificateType
	// KindMaxTxSizeReached: the serialized tx body exceeds max_tx_size.
	KindMaxTxSizeReached
	// KindMaxValueSizeReached: a single output's value exceeds max_value_size.
	KindMaxValueSizeReached
)

func (k Kind) String() string {
	switch k {
	case KindBalanceInsufficient:
		return "UTXO_BALANCE_INSUFFICIENT"
	case KindValueTooSmall:
		return "UTXO_VALUE_TOO_SMALL"
	case KindUnsupportedCertificateType:
		return "UNSUPPORTED_CERTIFICATE_TYPE"
	case KindMaxTxSizeReached:
		return "MAX_TX_SIZE_REACHED"
	case KindMaxValueSizeReached:
		return "MAX_VALUE_SIZE_REACHED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// CompositionError is the error type raised by all fatal conditions in
// this package. Composition aborts on any CompositionError; no partial
// result is ever returned alongside one.
type CompositionError struct {
	Kind Kind
}

func (e *CompositionError) Error() string {
	return e.Kind.String()
}

// Is allows errors.Is(err, coinselect.ErrBalanceInsufficient) style checks
// by comparing Kind, since CompositionError carries no other state.
func (e *CompositionError) Is(target error) bool {
	other, ok := target.(*CompositionError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel errors, one per Kind, for errors.Is(err, coinselect.ErrX) checks.
var (
	ErrBalanceInsufficient        = &CompositionError{Kind: KindBalanceInsufficient}
	ErrValueTooSmall              = &CompositionError{Kind: KindValueTooSmall}
	ErrUnsupportedCertificateType = &CompositionError{Kind: KindUnsupportedCertificateType}
	ErrMaxTxSizeReached           = &CompositionError{Kind: KindMaxTxSizeReached}
	ErrMaxValueSizeReached        = &CompositionError{Kind: KindMaxValueSizeReached}
)
