package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
)

// cachedResponse is what the idempotency cache stores per key.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// WalletHandler handles the wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	cache     ports.IdempotencyCache // nil = Idempotency-Key ignored
	cacheTTL  time.Duration
	log       zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, cache ports.IdempotencyCache, cacheTTL time.Duration, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		walletSvc: walletSvc,
		cache:     cache,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// GetWallet handles GET /wallet/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	walletID, err := parseWalletID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// Credit handles POST /wallet/:id/credit. Responds 201 when the credit
// opened the wallet, 200 otherwise.
func (h *WalletHandler) Credit(c *gin.Context) {
	walletID, err := parseWalletID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.idempotent(c, "credit", walletID, func() (int, any, error) {
		req, err := bindAmount(c)
		if err != nil {
			return 0, nil, err
		}

		result, err := h.walletSvc.Credit(c.Request.Context(), ports.CreditRequest{
			WalletID: walletID,
			Amount:   req.Amount.Decimal,
			Metadata: requestMetadata(c, req.Metadata),
		})
		if err != nil {
			return 0, nil, err
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		return status, dto.NewTransactionResponse(result.Transaction, response.RequestID(c)), nil
	})
}

// Debit handles POST /wallet/:id/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	walletID, err := parseWalletID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.idempotent(c, "debit", walletID, func() (int, any, error) {
		req, err := bindAmount(c)
		if err != nil {
			return 0, nil, err
		}

		txn, err := h.walletSvc.Debit(c.Request.Context(), ports.DebitRequest{
			WalletID: walletID,
			Amount:   req.Amount.Decimal,
			Metadata: requestMetadata(c, req.Metadata),
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, dto.NewTransactionResponse(txn, response.RequestID(c)), nil
	})
}

// idempotent runs fn once per Idempotency-Key. Successful responses are
// cached and replayed verbatim; errors are never cached. A cache outage
// degrades to running fn without replay protection.
func (h *WalletHandler) idempotent(c *gin.Context, op string, walletID uuid.UUID, fn func() (int, any, error)) {
	key := c.GetHeader(HeaderIdempotencyKey)
	if key != "" && len(key) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation(fmt.Sprintf("%s must be at most %d characters", HeaderIdempotencyKey, maxIdempotencyKeyLen)))
		return
	}
	if key == "" || h.cache == nil {
		h.respond(c, fn)
		return
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("%s:%s:%s", op, walletID, key)

	cached, err := h.cache.Get(ctx, cacheKey)
	if err != nil {
		h.log.Warn().Err(err).Str("key", cacheKey).Msg("idempotency lookup failed, processing request")
	}
	if cached != nil {
		var replay cachedResponse
		if err := json.Unmarshal(cached, &replay); err == nil {
			c.Header(HeaderReplayed, "true")
			c.Data(replay.Status, "application/json; charset=utf-8", replay.Body)
			return
		}
		h.log.Warn().Str("key", cacheKey).Msg("discarding unreadable idempotency entry")
	}

	status, body, err := fn()
	if err != nil {
		response.Error(c, err)
		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		response.Error(c, apperror.InternalError(fmt.Errorf("marshal response: %w", err)))
		return
	}
	entry, err := json.Marshal(cachedResponse{Status: status, Body: raw})
	if err == nil {
		if err := h.cache.Set(ctx, cacheKey, entry, h.cacheTTL); err != nil {
			h.log.Warn().Err(err).Str("key", cacheKey).Msg("failed to store idempotent response")
		}
	}
	c.Data(status, "application/json; charset=utf-8", raw)
}

func (h *WalletHandler) respond(c *gin.Context, fn func() (int, any, error)) {
	status, body, err := fn()
	if err != nil {
		response.Error(c, err)
		return
	}
	switch status {
	case http.StatusCreated:
		response.Created(c, body)
	case http.StatusOK:
		response.OK(c, body)
	default:
		c.JSON(status, body)
	}
}

func parseWalletID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidWalletID(raw)
	}
	return id, nil
}

func bindAmount(c *gin.Context) (*dto.AmountRequest, error) {
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var (
			maxErr *http.MaxBytesError
			verrs  validator.ValidationErrors
		)
		switch {
		case errors.As(err, &maxErr):
			return nil, apperror.ErrRequestTooLarge()
		case errors.Is(err, dto.ErrAmountNotNumber):
			return nil, apperror.Validation(err.Error())
		case errors.As(err, &verrs):
			return nil, apperror.Validation(dto.ValidationMessage(err))
		default:
			return nil, apperror.ErrInvalidRequestBody()
		}
	}
	return &req, nil
}

// requestMetadata merges caller metadata with the request id and source.
// The request-scoped keys cannot be overridden by the body.
func requestMetadata(c *gin.Context, user map[string]any) domain.Metadata {
	md := make(domain.Metadata, len(user)+2)
	for k, v := range user {
		md[k] = v
	}
	md["requestId"] = response.RequestID(c)
	if source := middleware.Source(c); source != "" {
		md["source"] = source
	}
	return md
}
