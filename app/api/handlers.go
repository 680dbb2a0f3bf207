package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paw-chain/pairpool/app"
	ledgertypes "github.com/paw-chain/pairpool/x/ledger/types"
	pooltypes "github.com/paw-chain/pairpool/x/pool/types"
	twaptypes "github.com/paw-chain/pairpool/x/twap/types"
)

// MaxRequestBodyBytes bounds every JSON request body.
const MaxRequestBodyBytes = 1 << 20

var (
	// errBadRequest marks malformed input that never reached a keeper.
	errBadRequest = errors.New("bad request")
	// errBodyTooLarge marks a body over MaxRequestBodyBytes.
	errBodyTooLarge = errors.New("request body too large")
)

// Handler serves the pool's JSON API.
type Handler struct {
	app    *app.App
	logger log.Logger

	// zero means unlimited
	maxFaucetAmount math.Int
}

// NewHandler creates a new API handler
func NewHandler(logger log.Logger, a *app.App, maxFaucetAmount math.Int) *Handler {
	return &Handler{
		app:             a,
		logger:          logger.With("module", "api"),
		maxFaucetAmount: maxFaucetAmount,
	}
}

// RegisterRoutes registers the pool, oracle and faucet routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Queries
	r.HandleFunc("/pool", h.handleGetPool).Methods("GET")
	r.HandleFunc("/shares/{address}", h.handleGetShares).Methods("GET")
	r.HandleFunc("/quote", h.handleQuoteSwap).Methods("GET")
	r.HandleFunc("/quote/remove", h.handleQuoteRemove).Methods("GET")
	r.HandleFunc("/invariants", h.handleInvariants).Methods("GET")

	// Pool operations
	r.HandleFunc("/liquidity/add", h.handleAddLiquidity).Methods("POST")
	r.HandleFunc("/liquidity/remove", h.handleRemoveLiquidity).Methods("POST")
	r.HandleFunc("/swap", h.handleSwap).Methods("POST")
	r.HandleFunc("/shares/transfer", h.handleTransferShares).Methods("POST")
	r.HandleFunc("/skim", h.handleSkim).Methods("POST")

	// Devnet helpers
	r.HandleFunc("/oracle/price", h.handleRecordPrice).Methods("POST")
	r.HandleFunc("/faucet", h.handleFaucet).Methods("POST")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// Request/Response types

type AddLiquidityRequest struct {
	Provider string `json:"provider"`
	AmountA  string `json:"amount_a"`
	AmountB  string `json:"amount_b"`
}

type RemoveLiquidityRequest struct {
	Provider string `json:"provider"`
	Shares   string `json:"shares"`
}

type SwapRequest struct {
	Trader       string `json:"trader"`
	AssetIn      string `json:"asset_in"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
}

type TransferSharesRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type SkimRequest struct {
	Recipient string `json:"recipient"`
}

type RecordPriceRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
	Price string `json:"price"`
}

type FaucetRequest struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
	Amount  string `json:"amount"`
}

// PoolResponse describes the pool at the latest height.
type PoolResponse struct {
	Pool       pooltypes.Pool  `json:"pool"`
	Address    string          `json:"address"`
	SpotPriceA *math.LegacyDec `json:"spot_price_a,omitempty"`
	SpotPriceB *math.LegacyDec `json:"spot_price_b,omitempty"`
	Height     int64           `json:"height"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string `json:"error"`
	Recovery string `json:"recovery"`
}

// Query handlers

func (h *Handler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	var resp PoolResponse
	err := h.app.Query(func(ctx sdk.Context) error {
		pool, err := h.app.PoolKeeper.GetPool(ctx)
		if err != nil {
			return err
		}
		resp.Pool = pool
		resp.Address = h.app.PoolKeeper.PoolAddress().String()

		// an empty pool has no spot price
		if price, err := h.app.PoolKeeper.SpotPrice(ctx, pool.DenomA); err == nil {
			resp.SpotPriceA = &price
		}
		if price, err := h.app.PoolKeeper.SpotPrice(ctx, pool.DenomB); err == nil {
			resp.SpotPriceB = &price
		}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp.Height = h.app.Height()
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetShares(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress("address", mux.Vars(r)["address"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	var shares, total math.Int
	err = h.app.Query(func(ctx sdk.Context) error {
		var err error
		if shares, err = h.app.PoolKeeper.ShareBalance(ctx, addr); err != nil {
			return err
		}
		total, err = h.app.PoolKeeper.TotalShares(ctx)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":      addr.String(),
		"shares":       shares,
		"total_shares": total,
	})
}

func (h *Handler) handleQuoteSwap(w http.ResponseWriter, r *http.Request) {
	assetIn := r.URL.Query().Get("asset_in")
	amountIn, err := parseAmount("amount_in", r.URL.Query().Get("amount_in"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var amountOut math.Int
	err = h.app.Query(func(ctx sdk.Context) error {
		var err error
		amountOut, err = h.app.PoolKeeper.QuoteSwap(ctx, assetIn, amountIn)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"asset_in":   assetIn,
		"amount_in":  amountIn,
		"amount_out": amountOut,
	})
}

func (h *Handler) handleQuoteRemove(w http.ResponseWriter, r *http.Request) {
	shares, err := parseAmount("shares", r.URL.Query().Get("shares"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var amountA, amountB math.Int
	err = h.app.Query(func(ctx sdk.Context) error {
		var err error
		amountA, amountB, err = h.app.PoolKeeper.QuoteRemoveLiquidity(ctx, shares)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"shares":   shares,
		"amount_a": amountA,
		"amount_b": amountB,
	})
}

func (h *Handler) handleInvariants(w http.ResponseWriter, r *http.Request) {
	msg, broken := h.app.CheckInvariants()

	status := http.StatusOK
	if broken {
		h.logger.Error("pool invariant broken", "details", msg)
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, map[string]interface{}{
		"broken":  broken,
		"message": msg,
		"height":  h.app.Height(),
	})
}

// Pool operation handlers

func (h *Handler) handleAddLiquidity(w http.ResponseWriter, r *http.Request) {
	var req AddLiquidityRequest
	if !h.decode(w, r, &req) {
		return
	}

	provider, err := parseAddress("provider", req.Provider)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amountA, err := parseAmount("amount_a", req.AmountA)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amountB, err := parseAmount("amount_b", req.AmountB)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var shares math.Int
	events, err := h.app.Execute(func(ctx sdk.Context) error {
		var err error
		shares, err = h.app.PoolKeeper.AddLiquidity(ctx, provider, amountA, amountB)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, events, map[string]interface{}{
		"shares": shares,
	})
}

func (h *Handler) handleRemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	var req RemoveLiquidityRequest
	if !h.decode(w, r, &req) {
		return
	}

	provider, err := parseAddress("provider", req.Provider)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shares, err := parseAmount("shares", req.Shares)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var amountA, amountB math.Int
	events, err := h.app.Execute(func(ctx sdk.Context) error {
		var err error
		amountA, amountB, err = h.app.PoolKeeper.RemoveLiquidity(ctx, provider, shares)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, events, map[string]interface{}{
		"amount_a": amountA,
		"amount_b": amountB,
	})
}

func (h *Handler) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if !h.decode(w, r, &req) {
		return
	}

	trader, err := parseAddress("trader", req.Trader)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amountIn, err := parseAmount("amount_in", req.AmountIn)
	if err != nil {
		h.writeError(w, err)
		return
	}
	minAmountOut, err := parseAmount("min_amount_out", req.MinAmountOut)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var amountOut math.Int
	events, err := h.app.Execute(func(ctx sdk.Context) error {
		var err error
		amountOut, err = h.app.PoolKeeper.Swap(ctx, trader, req.AssetIn, amountIn, minAmountOut)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, events, map[string]interface{}{
		"amount_out": amountOut,
	})
}

func (h *Handler) handleTransferShares(w http.ResponseWriter, r *http.Request) {
	var req TransferSharesRequest
	if !h.decode(w, r, &req) {
		return
	}

	from, err := parseAddress("from", req.From)
	if err != nil {
		h.writeError(w, err)
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	events, err := h.app.Execute(func(ctx sdk.Context) error {
		return h.app.PoolKeeper.TransferShares(ctx, from, to, amount)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, events, map[string]interface{}{
		"amount": amount,
	})
}

func (h *Handler) handleSkim(w http.ResponseWriter, r *http.Request) {
	var req SkimRequest
	if !h.decode(w, r, &req) {
		return
	}

	recipient, err := parseAddress("recipient", req.Recipient)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var excessA, excessB math.Int
	events, err := h.app.Execute(func(ctx sdk.Context) error {
		var err error
		excessA, excessB, err = h.app.PoolKeeper.Skim(ctx, recipient)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, events, map[string]interface{}{
		"amount_a": excessA,
		"amount_b": excessB,
	})
}

// Devnet handlers

func (h *Handler) handleRecordPrice(w http.ResponseWriter, r *http.Request) {
	var req RecordPriceRequest
	if !h.decode(w, r, &req) {
		return
	}

	price, err := math.LegacyNewDecFromStr(req.Price)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: price: %v", errBadRequest, err))
		return
	}

	events, err := h.app.Execute(func(ctx sdk.Context) error {
		return h.app.TWAPKeeper.RecordPrice(ctx, req.Base, req.Quote, price)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("reference price recorded", "base", req.Base, "quote", req.Quote, "price", price.String())
	h.writeSuccess(w, events, map[string]interface{}{
		"base":  req.Base,
		"quote": req.Quote,
		"price": price,
	})
}

func (h *Handler) handleFaucet(w http.ResponseWriter, r *http.Request) {
	var req FaucetRequest
	if !h.decode(w, r, &req) {
		return
	}

	addr, err := parseAddress("address", req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !h.maxFaucetAmount.IsNil() && h.maxFaucetAmount.IsPositive() && amount.GT(h.maxFaucetAmount) {
		h.writeError(w, fmt.Errorf("%w: faucet dispenses at most %s", errBadRequest, h.maxFaucetAmount))
		return
	}

	ledger, err := h.app.Ledger(req.Denom)
	if err != nil {
		h.writeError(w, err)
		return
	}

	events, err := h.app.Execute(func(ctx sdk.Context) error {
		return ledger.Mint(ctx, addr, amount)
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, events, map[string]interface{}{
		"address": addr.String(),
		"denom":   req.Denom,
		"amount":  amount,
	})
}

// Helpers

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit))
			return false
		}
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return false
	}
	return true
}

func parseAddress(field, value string) (sdk.AccAddress, error) {
	addr, err := sdk.AccAddressFromBech32(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadRequest, field, err)
	}
	return addr, nil
}

func parseAmount(field, value string) (math.Int, error) {
	amount, ok := math.NewIntFromString(value)
	if !ok {
		return math.Int{}, fmt.Errorf("%w: %s: %q is not an integer", errBadRequest, field, value)
	}
	return amount, nil
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pooltypes.ErrReentrancyDetected):
		return http.StatusConflict
	case errors.Is(err, pooltypes.ErrSlippageExceeded),
		errors.Is(err, pooltypes.ErrPriceManipulationDetected):
		return http.StatusUnprocessableEntity
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

var validationErrors = []error{
	errBadRequest,
	app.ErrUnknownDenom,
	pooltypes.ErrInvalidAmount,
	pooltypes.ErrInvalidToken,
	pooltypes.ErrInvalidAddress,
	pooltypes.ErrInsufficientShares,
	pooltypes.ErrInsufficientLiquidity,
	pooltypes.ErrNoLiquidity,
	pooltypes.ErrTransferFailed,
	ledgertypes.ErrInvalidAmount,
	ledgertypes.ErrInvalidAddress,
	ledgertypes.ErrInsufficientFunds,
	twaptypes.ErrInvalidPrice,
	twaptypes.ErrInvalidPair,
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeSuccess(w http.ResponseWriter, events sdk.Events, data map[string]interface{}) {
	data["height"] = h.app.Height()
	data["events"] = events
	h.writeJSON(w, http.StatusOK, data)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, ErrorResponse{
		Error:    err.Error(),
		Recovery: pooltypes.GetRecoverySuggestion(err),
	})
}
