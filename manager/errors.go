// SPDX-License-Identifier: EPL-2.0

package manager

import "errors"

var (
	ErrEmptyPlaylist = errors.New("playlist has no songs")
	ErrNoTransition  = errors.New("no transition in progress")
	ErrUnknownEffect = errors.New("unknown effect")
)
