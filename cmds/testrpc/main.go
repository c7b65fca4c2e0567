// testrpc drives configurable rounds of synthetic transaction traffic
// against a cluster of node endpoints and reports delivery counts.
//
// The run is declared in a YAML file (see pkg/config); the transport is
// selected by the `adapter` key. Results are printed to stdout between
// ---RESULTS-- / ---END RESULTS-- markers so scripts can extract them from
// mixed output.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/intelsdi-x/testrpc/pkg/adapters"
	"github.com/intelsdi-x/testrpc/pkg/conf"
	"github.com/intelsdi-x/testrpc/pkg/config"
	"github.com/intelsdi-x/testrpc/pkg/report"
	"github.com/intelsdi-x/testrpc/pkg/results"
	"github.com/intelsdi-x/testrpc/pkg/runctx"
	"github.com/intelsdi-x/testrpc/pkg/runner"
	"github.com/intelsdi-x/testrpc/pkg/utils/errutil"
	"github.com/intelsdi-x/testrpc/pkg/utils/retry"
	"github.com/intelsdi-x/testrpc/pkg/utils/uuid"
)

const defaultNumOfNodes = 4

var (
	configFileFlag = conf.NewStringFlag(
		"config", "Path to the run configuration file.", "hotshot.testrpc.yaml")
	dryRunFlag = conf.NewBoolFlag(
		"dry_run", "Simulate deliveries without performing network I/O.", false)
	genMockRPCsFlag = conf.NewBoolFlag(
		"gen_mock_rpcs", "Generate placeholder endpoints instead of discovery (dry run only).", false)
	logFileFlag = conf.NewStringFlag(
		"log_file", "Write logs to given file instead of stderr.", "")
	initRetriesFlag = conf.NewIntFlag(
		"init_retries", "Attempts for endpoint discovery at startup.", 10)
	initRetryDelayFlag = conf.NewDurationFlag(
		"init_retry_delay", "Initial delay between discovery attempts, doubled after each failure.", time.Second)
)

func main() {
	conf.SetAppName("testrpc")
	conf.SetHelp(`testrpc sends rounds of synthetic transactions to a cluster of nodes
through a pluggable transport adapter and reports per-round delivery counts.`)

	errutil.Check(conf.ParseFlags())
	log.SetLevel(conf.LogLevel())
	setupLogOutput()

	log.Infof("Starting testrpc with config file: %s", configFileFlag.Value())

	cfg, err := config.Load(configFileFlag.Value())
	errutil.CheckWithContext(err, "loading run configuration failed")

	dryRun := dryRunFlag.Value()
	if dryRun {
		log.Info("Dry run, we will not send any transactions")
	}

	adapter, err := adapters.New(cfg.Adapter, dryRun)
	errutil.Check(err)

	r := runner.New(adapter, cfg)

	endpoints := loadEndpoints(r, cfg, dryRun)
	errutil.Check(r.CheckNodeCount(endpoints))

	pingEndpoints(r, endpoints)

	ctx := runctx.New()
	installSignalHandler(ctx)

	start := time.Now()
	collected, err := r.Run(ctx, endpoints)
	errutil.CheckWithContext(err, "run failed")

	flow := results.NewFlowResults(collected, time.Since(start))
	flow.RunID = uuid.New()

	if summary, ok := report.Summarize(flow); ok {
		log.Infof("Run %s finished: %s", flow.RunID, summary)
	}

	errutil.Check(report.Write(os.Stdout, flow))
}

// loadEndpoints resolves the target endpoints: the explicit list from the
// run file, generated placeholders for discovery-less dry runs, or adapter
// discovery wrapped in bounded exponential backoff.
func loadEndpoints(r *runner.Runner, cfg config.Config, dryRun bool) []string {
	if len(cfg.RPCs) > 0 {
		endpoints, err := r.LoadEndpoints()
		errutil.Check(err)
		return endpoints
	}

	if dryRun && genMockRPCsFlag.Value() {
		numOfNodes := defaultNumOfNodes
		if cfg.NumOfNodes != nil {
			numOfNodes = *cfg.NumOfNodes
		}
		return runner.MockEndpoints(numOfNodes)
	}

	var endpoints []string
	err := retry.Retry(initRetriesFlag.Value(), initRetryDelayFlag.Value(), func() error {
		var err error
		endpoints, err = r.LoadEndpoints()
		return err
	}, true)
	errutil.CheckWithContext(err, "loading endpoints failed")

	return endpoints
}

// pingEndpoints runs the pre-run reachability pass. Probe problems are
// logged, never fatal: the run itself will surface real delivery failures.
func pingEndpoints(r *runner.Runner, endpoints []string) {
	reachable, err := r.PingEndpoints(endpoints)
	switch {
	case err == adapters.ErrPingNotSupported:
		log.Debug("Adapter does not support endpoint probing")
	case err != nil:
		log.Warnf("Failed to ping endpoints: %v", err)
	case reachable == 0:
		log.Warn("No reachable endpoints found")
	default:
		log.Infof("%d endpoints are reachable", reachable)
	}
}

func setupLogOutput() {
	logFile := logFileFlag.Value()
	if logFile == "" {
		return
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	errutil.CheckWithContext(err, "opening log file failed")
	log.SetOutput(file)
}

// installSignalHandler translates termination signals into a single Stop of
// the run context. The run then winds down cooperatively and the report for
// the completed rounds is still printed.
func installSignalHandler(ctx *runctx.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		received := <-signals
		log.Debugf("Received %s signal", received)
		ctx.Stop()
	}()
}
