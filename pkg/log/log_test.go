package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInfoWithValues(t *testing.T) {
	buf := &bytes.Buffer{}
	UseTextFormatter(buf)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	InfoWithValues("[Chaos]: Rebooting node", Fields{"Node": "10.0.1.1", "Role": "worker"})
	assert.Contains(t, buf.String(), "Rebooting node")
	assert.Contains(t, buf.String(), "Node=10.0.1.1")
	assert.Contains(t, buf.String(), "Role=worker")
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	SetLevel("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	SetLevel("chatty")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
