package interfaces

// Service is the interface every transport exposing the connectors to the
// outside world must be compliant with.
type Service interface {
	Start() error
	Stop()
}
