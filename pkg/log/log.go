package log

import (
	"io"

	logrus "github.com/sirupsen/logrus"
)

// Fields is the set of key/values attached to a structured entry
type Fields = logrus.Fields

func entry(fields Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

// UseTextFormatter prints full timestamps and keeps the fields in insertion order
func UseTextFormatter(out io.Writer) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		DisableSorting:         true,
		DisableLevelTruncation: true,
	})
	if out != nil {
		logrus.SetOutput(out)
	}
}

// SetLevel applies the named level, unknown names fall back to info
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		entry(Fields{"level": level}).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

//Infof log the General operational entries about what's going on inside the application
func Infof(msg string, val ...interface{}) {
	entry(nil).Infof(msg, val...)
}

func Info(msg string) {
	entry(nil).Info(msg)
}

// InfoWithValues logs msg with the extra key value pairs
func InfoWithValues(msg string, val Fields) {
	entry(val).Info(msg)
}

// Warnf log the Non-critical entries that deserve eyes
func Warnf(msg string, val ...interface{}) {
	entry(nil).Warnf(msg, val...)
}

func Warn(msg string) {
	entry(nil).Warn(msg)
}

// Errorf used for errors that should definitely be noted
func Errorf(msg string, err ...interface{}) {
	entry(nil).Errorf(msg, err...)
}

func Error(msg string) {
	entry(nil).Error(msg)
}

// ErrorWithValues logs msg at error level with the extra key value pairs
func ErrorWithValues(msg string, val Fields) {
	entry(val).Error(msg)
}
