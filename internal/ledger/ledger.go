// Package ledger stands in for the host runtime that executes escrow
// instructions: it provides the clock, record creation at derived addresses,
// authorized value transfers and balance reads, and makes each instruction
// all-or-nothing.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/errcode"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
)

// Clock supplies the instruction timestamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Ledger executes instructions against the repository.
type Ledger struct {
	repo      *repository.Repository
	programID solana.PublicKey
	clock     Clock
	log       *zap.Logger

	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func New(repo *repository.Repository, programID solana.PublicKey, clock Clock, log *zap.Logger) *Ledger {
	if clock == nil {
		clock = SystemClock
	}
	return &Ledger{
		repo:      repo,
		programID: programID,
		clock:     clock,
		log:       log,
		locks:     make(map[string]*accountLock),
	}
}

// Execute runs fn as one instruction. Instructions that name a common
// account are serialized; all writes made through tx commit together or not
// at all.
func (l *Ledger) Execute(ctx context.Context, instruction string, accounts []solana.PublicKey, fn func(tx *Tx) error) error {
	unlock := l.lockAccounts(accounts)
	defer unlock()

	now := l.clock.Now().Unix()
	err := l.repo.Transaction(ctx, func(r *repository.Repository) error {
		return fn(&Tx{
			ctx:         ctx,
			repo:        r,
			programID:   l.programID,
			instruction: instruction,
			now:         now,
		})
	})
	if err != nil {
		code, ok := errcode.CodeOf(err)
		if ok {
			l.log.Warn("instruction rejected",
				zap.String("instruction", instruction),
				zap.String("code", code.String()))
		} else {
			l.log.Error("instruction failed",
				zap.String("instruction", instruction),
				zap.Error(err))
		}
		return err
	}
	return nil
}

// Read runs fn against committed state without locking.
func (l *Ledger) Read(ctx context.Context, fn func(tx *Tx) error) error {
	return fn(&Tx{ctx: ctx, repo: l.repo, programID: l.programID, instruction: "read", now: l.clock.Now().Unix()})
}

func (l *Ledger) lockAccounts(accounts []solana.PublicKey) func() {
	keys := make([]string, 0, len(accounts))
	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		k := a.String()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	held := make([]*accountLock, 0, len(keys))
	for _, k := range keys {
		l.mu.Lock()
		lk, ok := l.locks[k]
		if !ok {
			lk = &accountLock{}
			l.locks[k] = lk
		}
		lk.refs++
		l.mu.Unlock()

		lk.mu.Lock()
		held = append(held, lk)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range keys {
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

// Tx is the view of the ledger inside one instruction.
type Tx struct {
	ctx         context.Context
	repo        *repository.Repository
	programID   solana.PublicKey
	instruction string
	now         int64
}

// CurrentTime is the instruction timestamp in unix seconds. It does not
// change while the instruction runs.
func (t *Tx) CurrentTime() int64 {
	return t.now
}

// CreateCompetition allocates the competition record at its derived address.
func (t *Tx) CreateCompetition(c *models.Competition) error {
	ok, err := t.repo.InsertCompetition(t.ctx, c)
	if err != nil {
		return fmt.Errorf("create competition record: %w", err)
	}
	if !ok {
		return errcode.New(errcode.AccountAlreadyInUse)
	}
	return nil
}

// CreatePrediction allocates the prediction record at its derived address.
func (t *Tx) CreatePrediction(p *models.Prediction) error {
	ok, err := t.repo.InsertPrediction(t.ctx, p)
	if err != nil {
		return fmt.Errorf("create prediction record: %w", err)
	}
	if !ok {
		return errcode.New(errcode.AccountAlreadyInUse)
	}
	return t.repo.IncrementParticipants(t.ctx, p.Competition)
}

// LoadCompetition reads the competition stored at address.
func (t *Tx) LoadCompetition(address solana.PublicKey) (*models.Competition, error) {
	c, err := t.repo.GetCompetitionByAddress(t.ctx, address.String())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errcode.New(errcode.CompetitionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load competition: %w", err)
	}
	return c, nil
}

// MarkResolved records the resolution of an active competition.
func (t *Tx) MarkResolved(c *models.Competition, payout, residual uint64) error {
	resolvedAt := t.now
	ok, err := t.repo.MarkResolved(t.ctx, c.Address, c.Winner, payout, residual, resolvedAt)
	if err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}
	if !ok {
		return errcode.New(errcode.AlreadyResolved)
	}
	c.State = models.CompetitionStateResolved
	c.Payout = payout
	c.Residual = residual
	c.ResolvedAt = &resolvedAt
	return nil
}

// ReadBalance returns the balance held at address.
func (t *Tx) ReadBalance(address solana.PublicKey) (uint64, error) {
	bal, err := t.repo.GetBalance(t.ctx, address.String())
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return bal, nil
}

// Transfer moves amount from one account to another. auth must prove the
// right to debit from.
func (t *Tx) Transfer(from, to solana.PublicKey, amount uint64, kind models.TransferKind, auth blockchain.Authorization) error {
	if auth == nil || !auth.Authorizes(from, t.programID) {
		return errcode.New(errcode.MissingRequiredSignature)
	}
	if amount == 0 {
		return nil
	}
	if err := t.checkCredit(to, amount); err != nil {
		return err
	}

	ok, err := t.repo.Debit(t.ctx, from.String(), amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if !ok {
		return errcode.New(errcode.InsufficientFunds)
	}
	if err := t.repo.Credit(t.ctx, to.String(), amount); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}

	return t.journal(from.String(), to, amount, kind, auth.Authority())
}

// Airdrop credits newly issued value to an account.
func (t *Tx) Airdrop(to solana.PublicKey, amount uint64) error {
	if err := t.checkCredit(to, amount); err != nil {
		return err
	}
	if err := t.repo.Credit(t.ctx, to.String(), amount); err != nil {
		return fmt.Errorf("airdrop to %s: %w", to, err)
	}
	return t.journal("", to, amount, models.TransferKindAirdrop, "faucet")
}

// GetCompetitionByID resolves a human id to its record.
func (t *Tx) GetCompetitionByID(id string) (*models.Competition, error) {
	c, err := t.repo.GetCompetitionByID(t.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errcode.New(errcode.CompetitionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get competition: %w", err)
	}
	return c, nil
}

// Repository exposes read queries bound to this instruction.
func (t *Tx) Repository() *repository.Repository {
	return t.repo
}

// checkCredit rejects a credit that would take to past the largest balance
// the store can hold.
func (t *Tx) checkCredit(to solana.PublicKey, amount uint64) error {
	bal, err := t.ReadBalance(to)
	if err != nil {
		return err
	}
	if amount > math.MaxInt64 || bal > math.MaxInt64-amount {
		return errcode.New(errcode.BalanceOverflow)
	}
	return nil
}

func (t *Tx) journal(from string, to solana.PublicKey, amount uint64, kind models.TransferKind, authority string) error {
	entry := &models.Transfer{
		ID:          uuid.New(),
		Instruction: t.instruction,
		Kind:        kind,
		From:        from,
		To:          to.String(),
		Amount:      amount,
		Authority:   authority,
		Timestamp:   t.now,
	}
	if err := t.repo.CreateTransfer(t.ctx, entry); err != nil {
		return fmt.Errorf("journal transfer: %w", err)
	}
	return nil
}
