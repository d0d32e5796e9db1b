package output

// LoggerPort takes key-value pairs after the message: Info("msg", "key", value).
type LoggerPort interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	WithField(key string, value any) LoggerPort
	WithFields(fields map[string]any) LoggerPort
	Named(name string) LoggerPort

	Close() error
}
