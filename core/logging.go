package core

// LogPerson identifies the acting principal in error reports.
type LogPerson struct {
	ID    string
	Email string
}

// Logger is any leveled logging service.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
