package log

// Leveled adapts the package logger to the leveled logger interface used by
// HTTP clients such as go-retryablehttp. Their per-request info messages are
// demoted to debug so -v stays readable.
type Leveled struct{}

func (Leveled) Error(msg string, keysAndValues ...interface{}) { Error(msg, keysAndValues...) }
func (Leveled) Warn(msg string, keysAndValues ...interface{})  { Warn(msg, keysAndValues...) }
func (Leveled) Info(msg string, keysAndValues ...interface{})  { Debug(msg, keysAndValues...) }
func (Leveled) Debug(msg string, keysAndValues ...interface{}) { Trace(msg, keysAndValues...) }
