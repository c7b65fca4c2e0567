package autobahn

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Args are the adapter arguments consumed from the run configuration.
type Args struct {
	// NodesConfigFile is the path to the JSON document describing the
	// committee: authorities, their workers and each worker's transactions
	// endpoint.
	NodesConfigFile string
}

// ParseArgs extracts autobahn arguments from the loosely typed bag.
func ParseArgs(args map[string]interface{}) (Args, error) {
	nodesConfigFile, ok := args["nodes_config_file"].(string)
	if !ok || nodesConfigFile == "" {
		return Args{}, errors.New("missing adapter argument: nodes_config_file")
	}
	return Args{NodesConfigFile: nodesConfigFile}, nil
}

// LoadEndpoints reads the worker transactions endpoints out of the nodes
// config file. The expected shape is:
//
//	{"authorities": {"<authority>": {"workers": {"<worker>": {"transactions": "ip:port"}}}}}
//
// Endpoints are returned in deterministic (sorted) authority/worker order.
func (a *Adapter) LoadEndpoints(args map[string]interface{}) ([]string, error) {
	parsed, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}

	endpoints, err := readNodesConfigFile(parsed.NodesConfigFile)
	if err != nil {
		return nil, err
	}

	log.Infof("Found %d nodes from config file.", len(endpoints))
	return endpoints, nil
}

func readNodesConfigFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read nodes config file %q", path)
	}

	document := map[string]interface{}{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, errors.Wrapf(err, "could not parse nodes config file %q", path)
	}

	rawAuthorities, ok := document["authorities"]
	if !ok {
		return nil, errors.Errorf("nodes config file %q must contain an 'authorities' object", path)
	}
	authorities, ok := rawAuthorities.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("expected 'authorities' to be an object in %q", path)
	}

	endpoints := []string{}
	for _, authorityID := range sortedKeys(authorities) {
		log.Debugf("Processing authority: %s", authorityID)

		authority, ok := authorities[authorityID].(map[string]interface{})
		if !ok {
			continue
		}
		workers, ok := authority["workers"].(map[string]interface{})
		if !ok {
			continue
		}

		for _, workerID := range sortedKeys(workers) {
			worker, ok := workers[workerID].(map[string]interface{})
			if !ok {
				continue
			}
			endpoint, ok := worker["transactions"].(string)
			if !ok {
				continue
			}

			endpoints = append(endpoints, strings.TrimSpace(endpoint))
			log.Debugf("Found transactions endpoint for authority %s worker %s: %s",
				authorityID, workerID, endpoint)
		}
	}

	if len(endpoints) == 0 {
		return nil, errors.Errorf("no transaction endpoints found in %q", path)
	}

	return endpoints, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
