// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contracts shared by every layer of hioload-probe: connection handles,
// operation descriptors, completions, the CompletionQueue backend interface
// and the common error values.
package api
