package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Importing testutil silences logrus unless tests run with -v.
func init() {
	for _, arg := range os.Args {
		if arg == "-test.v=true" || arg == "-test.v" {
			logrus.SetLevel(logrus.TraceLevel)
			return
		}
	}

	logrus.StandardLogger().Out = io.Discard
}

// DisableLogging discards the standard logger's output until reset is
// called.
func DisableLogging() (reset func()) {
	originalLogOutput := logrus.StandardLogger().Out
	logrus.StandardLogger().Out = io.Discard
	return func() {
		logrus.StandardLogger().Out = originalLogOutput
	}
}
