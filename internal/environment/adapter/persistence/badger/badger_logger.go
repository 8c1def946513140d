package badger

import (
	"strings"

	"docdb-dashboard/internal/shared/logger"
)

// badgerLogger routes Badger's internal logging through the app logger.
// Badger's info chatter is demoted to debug.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debugf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}
