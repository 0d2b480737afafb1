// File: protocol/probe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Probe wire codec. A probe is one fixed-width message carrying the server's
// monotonic clock reading at submission time.

package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// ProbeVersion identifies the probe encoding spoken on the wire.
	// Version 1: signed 64-bit nanoseconds, little-endian, 8 bytes.
	ProbeVersion = 1

	// ProbeSize is the width of one encoded probe.
	ProbeSize = 8
)

// ErrShortProbe is returned when fewer than ProbeSize bytes are decoded.
var ErrShortProbe = fmt.Errorf("probe shorter than %d bytes", ProbeSize)

// EncodeProbe writes ts into dst[:ProbeSize]. dst must hold ProbeSize bytes.
func EncodeProbe(dst []byte, ts int64) {
	binary.LittleEndian.PutUint64(dst[:ProbeSize], uint64(ts))
}

// AppendProbe appends the encoding of ts to dst.
func AppendProbe(dst []byte, ts int64) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(ts))
}

// DecodeProbe reads one probe from the front of src.
func DecodeProbe(src []byte) (int64, error) {
	if len(src) < ProbeSize {
		return 0, ErrShortProbe
	}
	return int64(binary.LittleEndian.Uint64(src[:ProbeSize])), nil
}
