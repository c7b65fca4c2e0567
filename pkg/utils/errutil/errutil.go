package errutil

import (
	log "github.com/sirupsen/logrus"
)

// Check the supplied error, log and exit if non-nil.
func Check(err error) {
	if err != nil {
		log.Debugf("%+v", err)
		log.Fatalf("%v", err)
	}
}

// CheckWithContext checks the error and exit if it is not nil. Logs additional context information.
func CheckWithContext(err error, context string) {
	if err != nil {
		log.Debugf("%s: %+v", context, err)
		log.Fatalf("%s: %v", context, err)
	}
}
