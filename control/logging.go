// control/logging.go
// Author: momentics <momentics@gmail.com>
//
// Process logger construction.

package control

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-probe/api"
)

// NewLogger builds a console logger at the named level ("" means info).
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("%w: log level %q", api.ErrInvalidArgument, level)
		}
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
