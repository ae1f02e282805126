package process

import (
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/webdumper/pkg/progress"
)

// reportProgress bumps the shared counter and logs the running tally.
func reportProgress(counter *progress.Counter, amount int64, log *logrus.Entry) {
	if counter == nil {
		return
	}
	counter.Increment(amount)
	current, total := counter.Report()
	log.Infof("Progress: %d/%d items downloaded.", current, total)
}
