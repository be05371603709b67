package pktlog

// Facade helpers using the global logger.
// Usage: pktlog.Info().Str("flow", id).Msg("tx logged")

func Trace() *Event { return L().Trace() }
func Debug() *Event { return L().Debug() }
func Info() *Event  { return L().Info() }
func Warn() *Event  { return L().Warn() }
func Error() *Event { return L().Error() }
func Fatal() *Event { return L().Fatal() }
