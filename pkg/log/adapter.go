package log

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// BadgerLogrusAdapter implements badger.Logger on top of a logrus entry.
// Badger's own info chatter (compactions, value log replay) is demoted to debug
// so it does not drown out crawl progress at the default level.
type BadgerLogrusAdapter struct {
	*logrus.Entry
}

// NewBadgerLogrusAdapter creates a new adapter
func NewBadgerLogrusAdapter(entry *logrus.Entry) *BadgerLogrusAdapter {
	return &BadgerLogrusAdapter{entry}
}

func (l *BadgerLogrusAdapter) Errorf(f string, v ...interface{}) {
	l.Entry.Errorf(trimNewline(f), v...)
}

func (l *BadgerLogrusAdapter) Warningf(f string, v ...interface{}) {
	l.Entry.Warnf(trimNewline(f), v...)
}

func (l *BadgerLogrusAdapter) Infof(f string, v ...interface{}) {
	l.Entry.Debugf(trimNewline(f), v...)
}

func (l *BadgerLogrusAdapter) Debugf(f string, v ...interface{}) {
	l.Entry.Tracef(trimNewline(f), v...)
}

// badger terminates its format strings with "\n"; logrus adds its own.
func trimNewline(f string) string {
	return strings.TrimSuffix(f, "\n")
}
