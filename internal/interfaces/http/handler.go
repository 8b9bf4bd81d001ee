package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/utxo-connector/internal/core/application/connector"
	"github.com/tdex-network/utxo-connector/internal/core/domain"
)

const maxBodySize = 1 << 20

type handler struct {
	manager *connector.Manager
}

// NewHandler returns the http.Handler serving the connector API of every
// chain held by manager. If gatherer is not nil, its metrics are exposed at
// /metrics.
func NewHandler(
	manager *connector.Manager, gatherer prometheus.Gatherer,
) http.Handler {
	h := &handler{manager}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/chains", h.listChains)
	mux.HandleFunc("GET /v1/chains/{chain}/balance", h.getBalance)
	mux.HandleFunc("GET /v1/chains/{chain}/addresses/{address}", h.getAddress)
	mux.HandleFunc("GET /v1/chains/{chain}/utxos", h.listUnspents)
	mux.HandleFunc("GET /v1/chains/{chain}/locked", h.listLocked)
	mux.HandleFunc("POST /v1/chains/{chain}/lock", h.lock)
	mux.HandleFunc("POST /v1/chains/{chain}/unlock", h.unlock)
	mux.HandleFunc("POST /v1/chains/{chain}/free", h.selectFree)
	mux.HandleFunc("POST /v1/chains/{chain}/fund", h.fund)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return withLogger(mux)
}

func (h *handler) listChains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chainsResponse{h.manager.Chains()})
}

func (h *handler) getBalance(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}

	address := req.URL.Query().Get("address")
	balance, err := c.GetBalance(req.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{c.Chain(), address, balance})
}

func (h *handler) getAddress(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}

	address := req.PathValue("address")
	addrType := c.ClassifyAddress(address)
	writeJSON(w, http.StatusOK, addressResponse{
		Address: address,
		Valid:   addrType != domain.AddressTypeUnknown,
		Type:    addrType.String(),
	})
}

func (h *handler) listUnspents(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}

	utxos, err := c.ListUnspent(req.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utxosResponse{newUtxoList(utxos)})
}

func (h *handler) listLocked(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, utxosResponse{newUtxoList(c.LockedInputs())})
}

func (h *handler) lock(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}
	utxos, ok := parseUtxos(w, req)
	if !ok {
		return
	}

	if err := c.LockInputs(req.Context(), utxos); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utxosResponse{newUtxoList(utxos)})
}

func (h *handler) unlock(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}
	utxos, ok := parseUtxos(w, req)
	if !ok {
		return
	}

	if err := c.UnlockInputs(req.Context(), utxos); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utxosResponse{newUtxoList(utxos)})
}

func (h *handler) selectFree(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}
	utxos, ok := parseUtxos(w, req)
	if !ok {
		return
	}

	free := c.SelectFreeInputs(utxos)
	writeJSON(w, http.StatusOK, utxosResponse{newUtxoList(free)})
}

func (h *handler) fund(w http.ResponseWriter, req *http.Request) {
	c, ok := h.connector(w, req)
	if !ok {
		return
	}

	var body fundRequest
	if err := decodeBody(w, req, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	utxos, change, err := c.FundInputs(req.Context(), body.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fundResponse{newUtxoList(utxos), change})
}

func (h *handler) connector(
	w http.ResponseWriter, req *http.Request,
) (connector.WalletConnector, bool) {
	chain := strings.ToUpper(req.PathValue("chain"))
	c, err := h.manager.Connector(chain)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return c, true
}

func parseUtxos(w http.ResponseWriter, req *http.Request) ([]domain.Utxo, bool) {
	var body utxosRequest
	if err := decodeBody(w, req, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return nil, false
	}
	utxos, err := body.parse()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return nil, false
	}
	return utxos, true
}

func decodeBody(
	w http.ResponseWriter, req *http.Request, v interface{},
) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrChainNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUtxoAlreadyLocked):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSourceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAddress):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("http: request failed")
	}
	writeJSON(w, status, errorResponse{err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("http: failed to write response")
	}
}

func withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debugf("http: %s %s", req.Method, req.URL.Path)
		next.ServeHTTP(w, req)
	})
}
