// SPDX-License-Identifier: EPL-2.0

package synth

import "errors"

var (
	ErrInvalidChannel = errors.New("channel must be in 0..15")
	ErrInvalidProgram = errors.New("bank and patch must be in 0..127")
)
