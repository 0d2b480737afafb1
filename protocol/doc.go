// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Peer-facing wire formats. Two streams share one TCP connection: an
// unframed echo/broadcast stream forwarded verbatim, and the probe stream of
// fixed-width timestamps defined in probe.go.
package protocol
