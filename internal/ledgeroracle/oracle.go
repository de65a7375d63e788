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

package ledgeroracle

import (
	"encoding/hex"
	"fmt"
	"math/big"

	serAddress "github.com/Salvionied/apollo/serialization/Address"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/txselect/internal/asset"
	"github.com/blinklabs-io/txselect/internal/coinselect"
	"github.com/blinklabs-io/txselect/internal/wallet"
)

// minUtxoOverheadBytes is the constant CIP-55 adds on top of the
// serialized output size before multiplying by coinsPerUtxoByte.
const minUtxoOverheadBytes = 160

// LedgerOracle implements coinselect.Oracle against the real protocol
// parameters and address/asset encoding machinery.
type LedgerOracle struct {
	FeeA             *big.Int
	FeeB             *big.Int
	CoinsPerUtxoByte *big.Int
}

// New returns a LedgerOracle configured from the given protocol
// parameters (spec §6.2/§6.3).
func New(feeA, feeB, coinsPerUtxoByte uint64) *LedgerOracle {
	return &LedgerOracle{
		FeeA:             new(big.Int).SetUint64(feeA),
		FeeB:             new(big.Int).SetUint64(feeB),
		CoinsPerUtxoByte: new(big.Int).SetUint64(coinsPerUtxoByte),
	}
}

// addressBytes decodes a bech32/Byron address into its raw header,
// payment and staking part bytes, using Apollo's address codec (the same one the
// example pack's tx builders decode change/payment addresses with).
func addressBytes(bech32Address string) ([]byte, error) {
	addr, err := serAddress.DecodeAddress(bech32Address)
	if err != nil {
		return nil, fmt.Errorf("error decoding address %q: %w", bech32Address, err)
	}
	raw := make([]byte, 0, 1+len(addr.PaymentPart)+len(addr.StakingPart))
	raw = append(raw, byte(addr.AddressType)<<4)
	raw = append(raw, addr.PaymentPart...)
	raw = append(raw, addr.StakingPart...)
	return raw, nil
}

// toTxValue converts a coinselect output's lovelace+assets into the local
// CBOR value model.
func toTxValue(o coinselect.Output) (txValue, error) {
	coin := uint64(0)
	if o.Amount != nil {
		coin = o.Amount.Uint64()
	}
	v := txValue{Coin: coin}
	if len(o.Assets) > 0 {
		v.Assets = make(map[string]map[string]uint64)
		for _, a := range o.Assets {
			policyHex, nameHex, err := asset.ParseUnit(asset.Unit(a.Unit))
			if err != nil {
				return txValue{}, err
			}
			if v.Assets[policyHex] == nil {
				v.Assets[policyHex] = make(map[string]uint64)
			}
			qty := uint64(0)
			if a.Quantity != nil {
				qty = a.Quantity.Uint64()
			}
			v.Assets[policyHex][nameHex] = qty
		}
	}
	return v, nil
}

// toTxOutput converts a coinselect output into the local CBOR output
// model, resolving its address (precompose outputs without one fall back
// to placeholder, matching spec §4.7).
func toTxOutput(o coinselect.Output, placeholder string) (txOutput, error) {
	addrBytes, err := addressBytes(o.ResolvedAddress(placeholder))
	if err != nil {
		return txOutput{}, err
	}
	val, err := toTxValue(o)
	if err != nil {
		return txOutput{}, err
	}
	return txOutput{Address: addrBytes, Value: val}, nil
}

// MinAda implements coinselect.Oracle (spec §6.2's coins-per-UTXO-byte
// rule, CIP-55: minUTxO = (160 + serializedOutputBytes) * coinsPerUtxoByte).
func (o *LedgerOracle) MinAda(output coinselect.Output) (*big.Int, error) {
	// min_ada must not depend on the coin value being sized (that would be
	// circular), so measure with coin pinned at zero.
	probe := output
	probe.Amount = big.NewInt(0)
	txOut, err := toTxOutput(probe, "")
	if err != nil {
		return nil, err
	}
	encoded, err := encodeOutput(txOut)
	if err != nil {
		return nil, fmt.Errorf("error encoding output for min_ada: %w", err)
	}
	size := big.NewInt(int64(minUtxoOverheadBytes + len(encoded)))
	return new(big.Int).Mul(o.CoinsPerUtxoByte, size), nil
}

// ValueSize implements coinselect.Oracle (spec §7 MAX_VALUE_SIZE_REACHED).
func (o *LedgerOracle) ValueSize(output coinselect.Output) (int, error) {
	val, err := toTxValue(output)
	if err != nil {
		return 0, err
	}
	encoded, err := encodeValue(val)
	if err != nil {
		return 0, fmt.Errorf("error encoding value: %w", err)
	}
	return len(encoded), nil
}

// FeeForInput implements coinselect.Oracle: the marginal fee contribution
// of spending one more UTXO is its encoded transaction_input size × feeA.
func (o *LedgerOracle) FeeForInput(addr string, input coinselect.UTXO) (*big.Int, error) {
	txIdBytes, err := hex.DecodeString(input.TxHash)
	if err != nil {
		return nil, fmt.Errorf("error decoding tx hash %q: %w", input.TxHash, err)
	}
	ref := txInputRef{TxId: txIdBytes, Index: input.OutputIndex}
	encoded, err := cbor.Encode(&ref)
	if err != nil {
		return nil, fmt.Errorf("error encoding input: %w", err)
	}
	return new(big.Int).Mul(o.FeeA, big.NewInt(int64(len(encoded)))), nil
}

// FeeForOutput implements coinselect.Oracle.
func (o *LedgerOracle) FeeForOutput(output coinselect.Output) (*big.Int, error) {
	txOut, err := toTxOutput(output, "")
	if err != nil {
		return nil, err
	}
	encoded, err := encodeOutput(txOut)
	if err != nil {
		return nil, fmt.Errorf("error encoding output: %w", err)
	}
	return new(big.Int).Mul(o.FeeA, big.NewInt(int64(len(encoded)))), nil
}

// DeriveStakeCredential implements coinselect.Oracle by delegating to the
// wallet package's Blake2b-224 derivation.
func (o *LedgerOracle) DeriveStakeCredential(accountPubKey []byte) ([]byte, error) {
	return wallet.DeriveStakeCredential(accountPubKey)
}

// NewBuilder implements coinselect.Oracle.
func (o *LedgerOracle) NewBuilder(changeAddress string) coinselect.Builder {
	return &ledgerBuilder{
		oracle:        o,
		changeAddress: changeAddress,
	}
}
