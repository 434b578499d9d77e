package gemini

import (
	"log/slog"
	"regexp"
	"strings"
)

// keyParamPattern matches the value of a key query parameter inside a
// URL, which is where the API key travels on the wire.
var keyParamPattern = regexp.MustCompile(`(?i)([?&]key=)[^&\s"']*`)

// redactSecrets scrubs s for logging: the value of any key query
// parameter is replaced, and so is every literal occurrence of key.
func redactSecrets(s, key string) string {
	s = keyParamPattern.ReplaceAllString(s, "${1}"+redactedMarker)
	if key != "" {
		s = strings.ReplaceAll(s, key, redactedMarker)
	}
	return s
}

// logger routes client diagnostics through slog with secret scrubbing
// applied to the message and to all string or error attribute values.
// It never panics and never blocks request dispatch on sink speed
// beyond what the underlying handler does.
type logger struct {
	sl  *slog.Logger
	key string
}

func newLogger(sl *slog.Logger, key Secret) *logger {
	if sl == nil {
		sl = slog.Default()
	}
	return &logger{sl: sl, key: key.Expose()}
}

func (l *logger) scrub(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			out[i] = redactSecrets(v, l.key)
		case error:
			out[i] = redactSecrets(v.Error(), l.key)
		default:
			out[i] = a
		}
	}
	return out
}

func (l *logger) Debug(msg string, args ...any) {
	l.sl.Debug(redactSecrets(msg, l.key), l.scrub(args)...)
}

func (l *logger) Info(msg string, args ...any) {
	l.sl.Info(redactSecrets(msg, l.key), l.scrub(args)...)
}

func (l *logger) Error(msg string, args ...any) {
	l.sl.Error(redactSecrets(msg, l.key), l.scrub(args)...)
}
