package circuitbreaker

import (
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MaxNumOfFailingRequests is the number of requests after which the
	// failing ratio is taken into account.
	MaxNumOfFailingRequests = 10
	// FailingRatio ...
	FailingRatio = 0.6
)

// NewCircuitBreaker returns a *gobreaker.CircuitBreaker guarding the calls to
// the named unspent source. It opens once more than MaxNumOfFailingRequests
// were made and at least FailingRatio of them failed.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:          name,
		ReadyToTrip:   readyToTrip,
		OnStateChange: logStateChange,
	})
}

func readyToTrip(counts gobreaker.Counts) bool {
	if int(counts.Requests) <= MaxNumOfFailingRequests {
		return false
	}
	ratio := float64(counts.TotalFailures) / float64(counts.Requests)
	return ratio >= FailingRatio
}

func logStateChange(name string, from, to gobreaker.State) {
	entry := log.WithField("source", name)
	switch {
	case to == gobreaker.StateOpen:
		entry.Warn("unspent source seems down, stop allowing requests")
	case from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen:
		entry.Info("checking unspent source status")
	case from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed:
		entry.Info("unspent source seems ok, restart allowing requests")
	}
}
