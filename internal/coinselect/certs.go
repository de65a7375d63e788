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

import "math/big"

// validateCertificates rejects certificate tags outside the four
// supported variants (spec §7 UNSUPPORTED_CERTIFICATE_TYPE) before the
// Selection Loop ever touches them.
func validateCertificates(certs []Certificate) error {
	for _, c := range certs {
		switch c.Type {
		case CertStakeRegistration, CertStakeDeregistration, CertStakeDelegation, CertStakePoolRegistration:
			// supported
		default:
			return ErrUnsupportedCertificateType
		}
	}
	return nil
}

// sumWithdrawals totals withdrawal amounts, which are added to the input
// side of the balance equation (spec §3).
func sumWithdrawals(withdrawals []Withdrawal) *big.Int {
	total := big.NewInt(0)
	for _, w := range withdrawals {
		if w.Amount != nil {
			total.Add(total, w.Amount)
		}
	}
	return total
}
