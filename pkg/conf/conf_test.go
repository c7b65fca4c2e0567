package conf

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	log "github.com/sirupsen/logrus"
)

const testAppName = "testAppName"

func clearEnv() {
	logLevelFlag.clear()
}

func TestConf(t *testing.T) {
	Convey("While using Conf pkg", t, func() {
		clearEnv()
		defer clearEnv()

		SetAppName(testAppName)
		SetHelp("test help")

		Convey("Name and help should match to specified one", func() {
			So(AppName(), ShouldEqual, testAppName)
			So(app.Help, ShouldEqual, "test help")
		})

		Convey("Log level can be fetched", func() {
			So(LogLevel(), ShouldEqual, log.ErrorLevel)
		})

		Convey("Log level can be fetched from env", func() {
			// Default one.
			So(LogLevel(), ShouldEqual, log.ErrorLevel)

			os.Setenv(logLevelFlag.envName(), "debug")

			err := ParseEnv()
			So(err, ShouldBeNil)
			So(LogLevel(), ShouldEqual, log.DebugLevel)
		})
	})
}
