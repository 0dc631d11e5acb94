package game

import "go.uber.org/zap"

// Severity classifies an invariant violation caught during resolution.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// fault reports an invariant violation hit mid-resolution. The caller skips
// the offending mutation and the turn continues; nothing here aborts play.
func (e *Engine) fault(st *matchState, severity Severity, msg string, fields ...zap.Field) {
	if e.logger == nil {
		return
	}
	if st != nil {
		fields = append(fields, zap.String("match_id", st.matchID))
	}
	fields = append(fields, zap.String("severity", severity.String()))
	switch severity {
	case SeverityWarning:
		e.logger.Warn(msg, fields...)
	default:
		e.logger.Error(msg, fields...)
	}
}
