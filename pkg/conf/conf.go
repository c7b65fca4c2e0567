// conf is a helper for testrpc configuration for both command line interface
// and environment variables.
// It gives ability to register arguments which will be fetched from
// CLI input OR environment variable.
// By default it registers following options:
// <TESTRPC_LOG> --log <Log level for testrpc: debug, info, warn, error, fatal, panic> Default: error
//
// When `ParseFlags` is executed, the arguments from both CLI and Env are
// parsed. In case of --help option - it prints help.
// It's recommended to run it only once, after all packages registered their
// options, so --help shows the whole overview of the testrpc configuration.
package conf

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("testrpc", "No help available")

	// Default flags and values.
	logLevelFlag = NewStringFlag(
		"log",
		"Log level for testrpc: debug, info, warn, error, fatal, panic",
		"error",
	)
	isEnvParsed = false
)

// SetAppName sets application name for CLI output.
// We need to expose this function so other packages can set the app name.
func SetAppName(name string) {
	app.Name = name
}

// SetHelp sets the help message for the CLI.
// We need to expose this function so other packages can set the app help.
func SetHelp(help string) {
	app.Help = help
}

// AppName returns specified app name.
func AppName() string {
	return app.Name
}

// LogLevel returns configured logLevel from input option or env variable.
// If it cannot parse the given log level, it falls back to the default value.
func LogLevel() log.Level {
	level, err := log.ParseLevel(logLevelFlag.Value())
	if err == nil {
		return level
	}

	level, err = log.ParseLevel(logLevelFlag.defaultValue)
	if err == nil {
		return level
	}

	// Programmer error.
	panic(errors.Wrap(err, "parsing log level failed"))
}

// ParseFlags parses both the command line flags of the process and
// environment variables.
func ParseFlags() error {
	_, err := app.Parse(os.Args[1:])
	if err != nil {
		return errors.Wrapf(err, "could not parse command line flags")
	}

	isEnvParsed = true
	return nil
}

// ParseEnv parses the environment only for arguments.
func ParseEnv() error {
	_, err := app.Parse([]string{})
	if err != nil {
		return errors.Wrapf(err, "could not parse environment flags")
	}

	isEnvParsed = true
	return nil
}
