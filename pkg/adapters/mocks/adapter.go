package mocks

import "time"

import "github.com/intelsdi-x/testrpc/pkg/results"
import "github.com/intelsdi-x/testrpc/pkg/runctx"
import "github.com/stretchr/testify/mock"

// Adapter mock
type Adapter struct {
	mock.Mock
}

// LoadEndpoints provides a mock function with given fields: args
func (_m *Adapter) LoadEndpoints(args map[string]interface{}) ([]string, error) {
	ret := _m.Called(args)

	var r0 []string
	if rf, ok := ret.Get(0).(func(map[string]interface{}) []string); ok {
		r0 = rf(args)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(map[string]interface{}) error); ok {
		r1 = rf(args)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Ping provides a mock function with given fields: endpoint, timeout
func (_m *Adapter) Ping(endpoint string, timeout time.Duration) (bool, error) {
	ret := _m.Called(endpoint, timeout)

	var r0 bool
	if rf, ok := ret.Get(0).(func(string, time.Duration) bool); ok {
		r0 = rf(endpoint, timeout)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string, time.Duration) error); ok {
		r1 = rf(endpoint, timeout)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SendTxs provides a mock function with given fields: ctx, endpoint, reqID, iteration, numTxs, txSize, timeout
func (_m *Adapter) SendTxs(ctx *runctx.Context, endpoint string, reqID uint64, iteration uint32, numTxs int, txSize int, timeout time.Duration) (results.RoundResults, error) {
	ret := _m.Called(ctx, endpoint, reqID, iteration, numTxs, txSize, timeout)

	var r0 results.RoundResults
	if rf, ok := ret.Get(0).(func(*runctx.Context, string, uint64, uint32, int, int, time.Duration) results.RoundResults); ok {
		r0 = rf(ctx, endpoint, reqID, iteration, numTxs, txSize, timeout)
	} else {
		r0 = ret.Get(0).(results.RoundResults)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(*runctx.Context, string, uint64, uint32, int, int, time.Duration) error); ok {
		r1 = rf(ctx, endpoint, reqID, iteration, numTxs, txSize, timeout)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
