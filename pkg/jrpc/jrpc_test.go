package jrpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJSONRPCClient(t *testing.T) {
	Convey("While using the JSON-RPC client", t, func() {
		Convey("When the server responds properly", func() {
			var received Request
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Assertions happen back on the test goroutine.
				json.NewDecoder(r.Body).Decode(&received)
				json.NewEncoder(w).Encode(Response{
					JSONRPC: version,
					Result:  json.RawMessage(`{"ok":true}`),
					ID:      received.ID,
				})
			}))
			defer server.Close()

			response, err := Send(server.URL, NewRequest(7, "send_txs", map[string]interface{}{}), time.Second)

			Convey("The request envelope carries version, method and id", func() {
				So(err, ShouldBeNil)
				So(received.JSONRPC, ShouldEqual, "2.0")
				So(received.Method, ShouldEqual, "send_txs")
				So(received.ID, ShouldEqual, 7)
			})

			Convey("The response id matches the request", func() {
				So(err, ShouldBeNil)
				So(response.ID, ShouldEqual, 7)
			})
		})

		Convey("When the server returns a non-200 status, an error is surfaced", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := Send(server.URL, NewRequest(1, "send_txs", nil), time.Second)
			So(err, ShouldNotBeNil)
		})

		Convey("When the endpoint is unreachable, an error is surfaced", func() {
			_, err := Send("127.0.0.1:1", NewRequest(1, "send_txs", nil), 100*time.Millisecond)
			So(err, ShouldNotBeNil)
		})

		Convey("SendNoop echoes the request id without network access", func() {
			response, err := SendNoop("http://nowhere:5000", NewRequest(42, "send_txs", nil))
			So(err, ShouldBeNil)
			So(response.ID, ShouldEqual, 42)
		})

		Convey("Bare host:port addresses get the http scheme prepended", func() {
			So(normalizeURL("10.0.0.1:5000"), ShouldEqual, "http://10.0.0.1:5000")
			So(normalizeURL("http://10.0.0.1:5000"), ShouldEqual, "http://10.0.0.1:5000")
		})
	})
}
