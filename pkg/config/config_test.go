package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const exampleConfig = `
interval: 1
iterations: 4
num_of_nodes: 4
adapter: hotshot
args:
  coordinator_url: http://127.0.0.1:3030
round_templates:
  10_txs:
    txs: 10
    tx_size: 100
rpcs:
  - http://localhost:5000
  - http://localhost:5001
  - http://localhost:5002
  - http://localhost:5003
rounds:
  - rpcs: [3, 0]
    use_template: 10_txs
  - rpcs: [1, 2]
    template:
      txs: 10
      tx_size: 1000
`

func TestParseConfig(t *testing.T) {
	Convey("While parsing a run configuration", t, func() {
		Convey("A complete config parses with all fields populated", func() {
			cfg, err := Parse([]byte(exampleConfig))

			So(err, ShouldBeNil)
			So(cfg.Interval, ShouldEqual, 1)
			So(*cfg.Iterations, ShouldEqual, 4)
			So(*cfg.NumOfNodes, ShouldEqual, 4)
			So(cfg.Adapter, ShouldEqual, AdapterHotshot)
			So(cfg.Args["coordinator_url"], ShouldEqual, "http://127.0.0.1:3030")
			So(len(cfg.RPCs), ShouldEqual, 4)
			So(len(cfg.Rounds), ShouldEqual, 2)

			Convey("Named templates resolve through use_template", func() {
				template, ok := cfg.Rounds[0].GetTemplate(cfg.RoundTemplates)
				So(ok, ShouldBeTrue)
				So(template.Txs, ShouldEqual, 10)
				So(template.TxSize, ShouldEqual, 100)
			})

			Convey("Inline templates win over the named lookup", func() {
				template, ok := cfg.Rounds[1].GetTemplate(cfg.RoundTemplates)
				So(ok, ShouldBeTrue)
				So(template.TxSize, ShouldEqual, 1000)
			})
		})

		Convey("A round without any template fails resolution", func() {
			round := Round{RPCs: []int{0}}
			_, ok := round.GetTemplate(map[string]RoundTemplate{})
			So(ok, ShouldBeFalse)
		})

		Convey("A round referencing an unknown template fails resolution", func() {
			round := Round{RPCs: []int{0}, UseTemplate: "missing"}
			_, ok := round.GetTemplate(map[string]RoundTemplate{})
			So(ok, ShouldBeFalse)
		})

		Convey("An unsupported adapter is rejected", func() {
			_, err := Parse([]byte("adapter: carrier-pigeon\nrounds:\n  - rpcs: [0]\n"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unsupported adapter")
		})

		Convey("A missing adapter is rejected", func() {
			_, err := Parse([]byte("rounds:\n  - rpcs: [0]\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("A config without rounds is rejected", func() {
			_, err := Parse([]byte("adapter: hotshot\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("A template with non-positive tx_size is rejected", func() {
			raw := `
adapter: autobahn
round_templates:
  bad:
    txs: 10
    tx_size: 0
rounds:
  - rpcs: [0]
    use_template: bad
`
			_, err := Parse([]byte(raw))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "tx_size")
		})

		Convey("Repeat defaults to a single occurrence", func() {
			So(Round{}.Occurrences(), ShouldEqual, 1)
			So(Round{Repeat: 3}.Occurrences(), ShouldEqual, 3)
		})
	})
}
