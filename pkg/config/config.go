// Package config defines the declarative run configuration for testrpc.
// A run file names an adapter, templates for rounds, and the ordered list of
// rounds to schedule. Example:
//
//	interval: 1
//	iterations: 4
//	num_of_nodes: 4
//	adapter: hotshot
//	args:
//	  coordinator_url: 127.0.0.1:3030
//	round_templates:
//	  10_txs:
//	    txs: 10
//	    tx_size: 100
//	rounds:
//	  - rpcs: [3, 0]
//	    use_template: 10_txs
//	  - rpcs: [1, 2]
//	    template:
//	      txs: 10
//	      tx_size: 1000
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Adapter names accepted in the `adapter` field.
const (
	AdapterHotshot  = "hotshot"
	AdapterAutobahn = "autobahn"
)

// RoundTemplate is the reusable shape of a round: how many transactions to
// deliver per endpoint and how large each transaction is.
type RoundTemplate struct {
	// Txs is the number of transactions to send to each endpoint.
	Txs int `yaml:"txs"`
	// TxSize is the size of a single transaction in bytes.
	TxSize int `yaml:"tx_size"`
	// Latency is an optional latency hint, passed through to reports.
	Latency string `yaml:"latency,omitempty"`
}

// Round declares one scheduled batch of deliveries. Exactly one of Template
// and UseTemplate must resolve to a template.
type Round struct {
	// RPCs are 0-based indices into the resolved endpoint list.
	RPCs []int `yaml:"rpcs"`
	// Repeat schedules the round this many times in a row (default 1).
	Repeat int `yaml:"repeat,omitempty"`
	// Template is an inline template, taking precedence over UseTemplate.
	Template *RoundTemplate `yaml:"template,omitempty"`
	// UseTemplate names an entry in Config.RoundTemplates.
	UseTemplate string `yaml:"use_template,omitempty"`
}

// GetTemplate resolves the round's template: the inline one wins, otherwise
// the named one is looked up. Returns false when neither resolves.
func (r Round) GetTemplate(templates map[string]RoundTemplate) (RoundTemplate, bool) {
	if r.Template != nil {
		return *r.Template, true
	}
	if r.UseTemplate != "" {
		template, ok := templates[r.UseTemplate]
		return template, ok
	}
	return RoundTemplate{}, false
}

// Occurrences returns how many times the round is scheduled per pass.
func (r Round) Occurrences() int {
	if r.Repeat > 1 {
		return r.Repeat
	}
	return 1
}

// Config is a parsed run file.
type Config struct {
	// Interval between rounds in seconds.
	Interval int `yaml:"interval"`
	// Iterations caps the number of rounds to run; unbounded when absent.
	Iterations *int `yaml:"iterations,omitempty"`
	// NumOfNodes is the expected endpoint count; when set, discovery must
	// yield exactly this many endpoints or the run aborts.
	NumOfNodes *int `yaml:"num_of_nodes,omitempty"`
	// Adapter selects the transport variant.
	Adapter string `yaml:"adapter"`
	// Timeout bounds single deliveries and pings, in seconds.
	Timeout *int `yaml:"timeout,omitempty"`
	// RoundTemplates are the named templates referable from rounds.
	RoundTemplates map[string]RoundTemplate `yaml:"round_templates,omitempty"`
	// Args is the adapter-specific argument bag.
	Args map[string]interface{} `yaml:"args,omitempty"`
	// RPCs is an explicit endpoint list which overrides discovery.
	RPCs []string `yaml:"rpcs,omitempty"`
	// Rounds is the ordered round declaration.
	Rounds []Round `yaml:"rounds"`
}

// IntervalDuration returns the inter-round pause.
func (c Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// TimeoutDuration returns the per-delivery timeout, or fallback when unset.
func (c Config) TimeoutDuration(fallback time.Duration) time.Duration {
	if c.Timeout == nil {
		return fallback
	}
	return time.Duration(*c.Timeout) * time.Second
}

// Load reads and parses a run file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "could not read config file %q", path)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "could not load config file %q", path)
	}
	return cfg, nil
}

// Parse parses raw YAML into a validated Config.
func Parse(raw []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "could not parse config yaml")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the invariants which can be verified before scheduling.
// Endpoint indices are checked per round at run time, since the endpoint
// list may come from discovery.
func (c Config) validate() error {
	switch c.Adapter {
	case AdapterHotshot, AdapterAutobahn:
	case "":
		return errors.New("adapter is required")
	default:
		return errors.Errorf("unsupported adapter: %q", c.Adapter)
	}

	if c.Interval < 0 {
		return errors.Errorf("interval must be non-negative, got %d", c.Interval)
	}
	if len(c.Rounds) == 0 {
		return errors.New("at least one round is required")
	}

	for name, template := range c.RoundTemplates {
		if err := validateTemplate(template); err != nil {
			return errors.Wrapf(err, "round template %q", name)
		}
	}
	for i, round := range c.Rounds {
		if len(round.RPCs) == 0 {
			return errors.Errorf("round %d targets no endpoints", i)
		}
		if round.Template != nil {
			if err := validateTemplate(*round.Template); err != nil {
				return errors.Wrapf(err, "round %d inline template", i)
			}
		}
	}

	return nil
}

func validateTemplate(template RoundTemplate) error {
	if template.Txs < 0 {
		return errors.Errorf("txs must be non-negative, got %d", template.Txs)
	}
	if template.TxSize <= 0 {
		return errors.Errorf("tx_size must be positive, got %d", template.TxSize)
	}
	return nil
}
