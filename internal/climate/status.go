// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package climate

import (
	"time"

	"github.com/relabs-tech/climate_node/internal/dht"
)

// StatusEvent reports a failed acquisition attempt.
type StatusEvent struct {
	Source  string    `json:"source"`
	Code    uint8     `json:"code"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// NewStatusEvent describes err. Errors carrying a dht status keep its code;
// anything else is reported as an unknown status.
func NewStatusEvent(source string, err error, at time.Time) StatusEvent {
	ev := StatusEvent{
		Source:  source,
		Code:    0xFF,
		Status:  "unknown status",
		Message: err.Error(),
		Time:    at,
	}
	if st, ok := dht.StatusOf(err); ok {
		ev.Code = uint8(st)
		ev.Status = st.String()
	}
	return ev
}
