// SPDX-License-Identifier: EPL-2.0

package library

import "errors"

var ErrUnsupportedFormat = errors.New("no decoder registered for file extension")
