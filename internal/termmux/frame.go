// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package termmux

import "encoding/binary"

// encodeFrame and decodeFrame implement the binary PTY framing decision
// recorded in the grounding ledger: a 2-byte big-endian length prefix
// naming the target session id, followed by the id itself, followed by
// raw payload bytes. Chosen over a JSON envelope per binary chunk to
// keep the hot output path allocation-light.
func encodeFrame(id string, payload []byte) []byte {
	out := make([]byte, 2+len(id)+len(payload))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(id)))
	copy(out[2:2+len(id)], id)
	copy(out[2+len(id):], payload)
	return out
}

func decodeFrame(frame []byte) (id string, payload []byte, ok bool) {
	if len(frame) < 2 {
		return "", nil, false
	}
	idLen := int(binary.BigEndian.Uint16(frame[0:2]))
	if len(frame) < 2+idLen {
		return "", nil, false
	}
	id = string(frame[2 : 2+idLen])
	payload = frame[2+idLen:]
	return id, payload, true
}
