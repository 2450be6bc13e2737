package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type logrusLogger struct {
	entry *logrus.Entry
}

func New(service string) Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)
	l.SetOutput(os.Stdout)

	hostname, _ := os.Hostname()
	return &logrusLogger{
		entry: l.WithFields(logrus.Fields{
			"service":  service,
			"hostname": hostname,
		}),
	}
}

func (l *logrusLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.with(action, requestID, details).Info(message)
}

func (l *logrusLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.with(action, requestID, details).Debug(message)
}

func (l *logrusLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	entry := l.with(action, requestID, details)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}

func (l *logrusLogger) with(action, requestID string, details map[string]interface{}) *logrus.Entry {
	fields := logrus.Fields{"action": action}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	for k, v := range details {
		fields[k] = v
	}
	return l.entry.WithFields(fields)
}
