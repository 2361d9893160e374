package ulogger

// NopLogger discards everything. Fatalf does not exit.
type NopLogger struct{}

func (NopLogger) LogLevel() string               { return "INFO" }
func (NopLogger) SetLogLevel(string)             {}
func (NopLogger) Debugf(string, ...interface{})  {}
func (NopLogger) Infof(string, ...interface{})   {}
func (NopLogger) Warnf(string, ...interface{})   {}
func (NopLogger) Errorf(string, ...interface{})  {}
func (NopLogger) Fatalf(string, ...interface{})  {}
func (n NopLogger) New(string, ...Option) Logger { return n }

// NewNopLogger returns a Logger that writes nothing.
func NewNopLogger() Logger {
	return NopLogger{}
}
