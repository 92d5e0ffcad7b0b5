// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package climate

// Source is anything that can provide samples over time: the DHT driver,
// the mock source, a replay of stored history.
type Source interface {
	Next() (Sample, error)
}
