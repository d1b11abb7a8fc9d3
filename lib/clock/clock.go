// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock supplies the current time. Every production function that
// would call time.Now should accept a Clock (or be a method on a struct
// with a Clock field) instead.
type Clock interface {
	Now() time.Time
}
