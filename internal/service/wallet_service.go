package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService on top of an append-only
// transaction store using optimistic concurrency.
type WalletServiceImpl struct {
	store     ports.TransactionStore
	publisher ports.TransactionPublisher
	retry     RetryPolicy
	log       zerolog.Logger
	now       func() time.Time
}

// NewWalletService creates a new WalletServiceImpl. publisher may be nil.
func NewWalletService(
	store ports.TransactionStore,
	publisher ports.TransactionPublisher,
	retry RetryPolicy,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		store:     store,
		publisher: publisher,
		retry:     retry,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetWallet returns the wallet projected from its latest transaction, or the
// zero wallet when none exists. It never writes.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	latest, err := s.store.GetLatestTransaction(ctx, walletID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get latest transaction: %w", err))
	}
	if latest == nil {
		return domain.NewWallet(walletID), nil
	}
	return latest.Wallet(), nil
}

// Debit removes amount from an existing wallet.
func (s *WalletServiceImpl) Debit(ctx context.Context, req ports.DebitRequest) (*domain.Transaction, error) {
	if req.Amount.IsNegative() {
		return nil, mapError(&domain.InvalidDebitAmountError{Amount: req.Amount})
	}
	if err := domain.CheckAmount(req.Amount); err != nil {
		return nil, mapError(err)
	}

	var txn *domain.Transaction
	err := s.retry.run(ctx, func(_ int) error {
		latest, err := s.store.GetLatestTransaction(ctx, req.WalletID)
		if err != nil {
			return fmt.Errorf("get latest transaction: %w", err)
		}
		if latest == nil {
			return &domain.WalletNotFoundError{WalletID: req.WalletID}
		}

		balance, err := domain.Debit(latest.Balance, req.Amount)
		if err != nil {
			return err
		}

		txn = s.newTransaction(latest.Wallet(), domain.TransactionTypeDebit, req.Amount, balance, req.Metadata)
		return s.append(ctx, txn)
	}, s.logRetry(req.WalletID, "debit"))
	if err != nil {
		return nil, mapError(err)
	}

	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Str("transaction_id", txn.TransactionID.String()).
		Str("amount", domain.FormatMoney(txn.Amount)).
		Str("balance", domain.FormatMoney(txn.Balance)).
		Int64("version", txn.Version).
		Msg("debit")

	s.publish(ctx, txn)
	return txn, nil
}

// Credit adds amount to a wallet, opening it on first use.
func (s *WalletServiceImpl) Credit(ctx context.Context, req ports.CreditRequest) (*ports.CreditResult, error) {
	if err := domain.CheckAmount(req.Amount); err != nil {
		return nil, mapError(err)
	}

	var (
		txn     *domain.Transaction
		created bool
	)
	err := s.retry.run(ctx, func(_ int) error {
		latest, err := s.store.GetLatestTransaction(ctx, req.WalletID)
		if err != nil {
			return fmt.Errorf("get latest transaction: %w", err)
		}

		var wallet *domain.Wallet
		if latest == nil {
			wallet = domain.NewWallet(req.WalletID)
			created = true
		} else {
			wallet = latest.Wallet()
			created = false
		}

		balance := domain.Credit(wallet.Balance, req.Amount)
		txn = s.newTransaction(wallet, domain.TransactionTypeCredit, req.Amount, balance, req.Metadata)
		return s.append(ctx, txn)
	}, s.logRetry(req.WalletID, "credit"))
	if err != nil {
		return nil, mapError(err)
	}

	msg := "credit"
	if created {
		msg = "credit new wallet"
	}
	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Str("transaction_id", txn.TransactionID.String()).
		Str("amount", domain.FormatMoney(txn.Amount)).
		Str("balance", domain.FormatMoney(txn.Balance)).
		Int64("version", txn.Version).
		Msg(msg)

	s.publish(ctx, txn)
	return &ports.CreditResult{Transaction: txn, Created: created}, nil
}

func (s *WalletServiceImpl) newTransaction(
	wallet *domain.Wallet,
	txType domain.TransactionType,
	amount, balance decimal.Decimal,
	metadata domain.Metadata,
) *domain.Transaction {
	return &domain.Transaction{
		WalletID:        wallet.ID,
		TransactionID:   uuid.New(),
		TransactionType: txType,
		Amount:          domain.RoundMoney(amount),
		Balance:         balance,
		Version:         wallet.NextVersion(),
		CreatedAt:       s.now(),
		Metadata:        metadata,
	}
}

func (s *WalletServiceImpl) append(ctx context.Context, txn *domain.Transaction) error {
	if err := s.store.AppendTransaction(ctx, txn); err != nil {
		if isConflict(err) {
			return err
		}
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *WalletServiceImpl) logRetry(walletID uuid.UUID, op string) func(int, time.Duration, error) {
	return func(attempt int, wait time.Duration, err error) {
		s.log.Warn().
			Err(err).
			Str("wallet_id", walletID.String()).
			Str("op", op).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("concurrent modification, retrying")
	}
}

// publish is best-effort: the transaction is already durable.
func (s *WalletServiceImpl) publish(ctx context.Context, txn *domain.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, txn); err != nil {
		s.log.Error().
			Err(err).
			Str("wallet_id", txn.WalletID.String()).
			Str("transaction_id", txn.TransactionID.String()).
			Msg("failed to publish transaction event")
	}
}

// mapError converts domain failures into AppErrors. The domain error stays
// reachable through errors.As.
func mapError(err error) error {
	var (
		invalid      *domain.InvalidDebitAmountError
		badAmount    *domain.InvalidAmountError
		insufficient *domain.InsufficientFundsError
		notFound     *domain.WalletNotFoundError
		conflict     *domain.ConcurrentModificationError
		appErr       *apperror.AppError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &invalid):
		return apperror.ErrInvalidDebitAmount(domain.FormatMoney(invalid.Amount), invalid)
	case errors.As(err, &badAmount):
		return apperror.ErrInvalidAmount(badAmount.Amount.String(), badAmount)
	case errors.As(err, &insufficient):
		return apperror.ErrInsufficientFunds(
			domain.FormatMoney(insufficient.Available),
			domain.FormatMoney(insufficient.Requested),
			insufficient,
		)
	case errors.As(err, &notFound):
		return apperror.ErrWalletNotFound(notFound.WalletID.String(), notFound)
	case errors.As(err, &conflict):
		return apperror.ErrConcurrentModification(conflict)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.ErrRequestTimeout()
	default:
		return apperror.ErrDatabaseError(err)
	}
}
