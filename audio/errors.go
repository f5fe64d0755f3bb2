// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrInvalidFormat  = errors.New("sample rate and channel count must be positive")
	ErrEmptySource    = errors.New("source produced no samples")
)
