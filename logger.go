package auth

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologAdapter bridges a zerolog.Logger to the Logger interface used
// throughout this package.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps the given zerolog logger
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

func (z *ZerologAdapter) Debug(format string, args ...any) {
	z.logger.Debug().Msg(formatMessage(format, args...))
}

func (z *ZerologAdapter) Info(format string, args ...any) {
	z.logger.Info().Msg(formatMessage(format, args...))
}

func (z *ZerologAdapter) Warn(format string, args ...any) {
	z.logger.Warn().Msg(formatMessage(format, args...))
}

func (z *ZerologAdapter) Error(format string, args ...any) {
	z.logger.Error().Msg(formatMessage(format, args...))
}

// formatMessage supports both printf templates and the "msg", k, v, k, v
// call style used by callers in this package.
func formatMessage(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}

	if countVerbs(format) > 0 {
		return fmt.Sprintf(format, args...)
	}

	out := format
	for i := 0; i+1 < len(args); i += 2 {
		out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	if len(args)%2 != 0 {
		out += fmt.Sprintf(" %v", args[len(args)-1])
	}
	return out
}

func countVerbs(format string) int {
	count := 0
	for i := 0; i < len(format)-1; i++ {
		if format[i] == '%' {
			if format[i+1] == '%' {
				i++
				continue
			}
			count++
		}
	}
	return count
}

var _ Logger = (*ZerologAdapter)(nil)
