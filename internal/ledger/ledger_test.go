package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/database"
	"prediction-escrow/internal/errcode"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
)

const testProgramID = "HJnVtBaQmzcbdeiHj5Y29UvXHiMBaKaTxjggva6ueMnq"

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func setupLedger(t *testing.T) (*Ledger, *blockchain.Deriver, *repository.Repository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	deriver, err := blockchain.NewDeriver(testProgramID)
	if err != nil {
		t.Fatalf("NewDeriver failed: %v", err)
	}
	repo := repository.NewRepository(db)
	clock := fixedClock{time.Unix(1_700_000_000, 0)}
	return New(repo, deriver.ProgramID(), clock, zap.NewNop()), deriver, repo
}

func fund(t *testing.T, l *Ledger, to solana.PublicKey, amount uint64) {
	t.Helper()
	err := l.Execute(context.Background(), "airdrop", []solana.PublicKey{to}, func(tx *Tx) error {
		return tx.Airdrop(to, amount)
	})
	if err != nil {
		t.Fatalf("airdrop failed: %v", err)
	}
}

func balance(t *testing.T, l *Ledger, addr solana.PublicKey) uint64 {
	t.Helper()
	var bal uint64
	err := l.Read(context.Background(), func(tx *Tx) error {
		var err error
		bal, err = tx.ReadBalance(addr)
		return err
	})
	if err != nil {
		t.Fatalf("ReadBalance failed: %v", err)
	}
	return bal
}

func TestCurrentTimeIsFrozen(t *testing.T) {
	l, _, _ := setupLedger(t)
	err := l.Execute(context.Background(), "noop", nil, func(tx *Tx) error {
		if tx.CurrentTime() != 1_700_000_000 {
			t.Errorf("unexpected time %d", tx.CurrentTime())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestTransferWithSignerAuthorization(t *testing.T) {
	l, _, _ := setupLedger(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	fund(t, l, alice, 100)

	err := l.Execute(context.Background(), "pay", []solana.PublicKey{alice, bob}, func(tx *Tx) error {
		return tx.Transfer(alice, bob, 40, models.TransferKindEntryFee, blockchain.SignerAuthorization{Signer: alice})
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got := balance(t, l, alice); got != 60 {
		t.Errorf("alice: expected 60, got %d", got)
	}
	if got := balance(t, l, bob); got != 40 {
		t.Errorf("bob: expected 40, got %d", got)
	}
}

func TestTransferRejectsForeignSigner(t *testing.T) {
	l, _, _ := setupLedger(t)
	alice := solana.NewWallet().PublicKey()
	mallory := solana.NewWallet().PublicKey()
	fund(t, l, alice, 100)

	err := l.Execute(context.Background(), "steal", nil, func(tx *Tx) error {
		return tx.Transfer(alice, mallory, 40, models.TransferKindPayout, blockchain.SignerAuthorization{Signer: mallory})
	})
	if !errcode.Is(err, errcode.MissingRequiredSignature) {
		t.Fatalf("expected MissingRequiredSignature, got %v", err)
	}
	if got := balance(t, l, alice); got != 100 {
		t.Errorf("alice balance changed: %d", got)
	}
}

func TestVaultTransferNeedsDerivedAuthorization(t *testing.T) {
	l, deriver, _ := setupLedger(t)
	vault, signer, err := deriver.VaultSigner("c1")
	if err != nil {
		t.Fatalf("VaultSigner failed: %v", err)
	}
	winner := solana.NewWallet().PublicKey()
	fund(t, l, vault, 100)

	// no external key can sign for the vault
	err = l.Execute(context.Background(), "resolve", nil, func(tx *Tx) error {
		return tx.Transfer(vault, winner, 10, models.TransferKindPayout, blockchain.SignerAuthorization{Signer: winner})
	})
	if !errcode.Is(err, errcode.MissingRequiredSignature) {
		t.Fatalf("expected MissingRequiredSignature, got %v", err)
	}

	// seeds of another competition do not cover this vault
	_, otherSigner, _ := deriver.VaultSigner("c2")
	err = l.Execute(context.Background(), "resolve", nil, func(tx *Tx) error {
		return tx.Transfer(vault, winner, 10, models.TransferKindPayout, otherSigner)
	})
	if !errcode.Is(err, errcode.MissingRequiredSignature) {
		t.Fatalf("expected MissingRequiredSignature, got %v", err)
	}

	err = l.Execute(context.Background(), "resolve", nil, func(tx *Tx) error {
		return tx.Transfer(vault, winner, 10, models.TransferKindPayout, signer)
	})
	if err != nil {
		t.Fatalf("derived transfer failed: %v", err)
	}
	if got := balance(t, l, winner); got != 10 {
		t.Errorf("winner: expected 10, got %d", got)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	l, _, _ := setupLedger(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	fund(t, l, alice, 10)

	err := l.Execute(context.Background(), "pay", nil, func(tx *Tx) error {
		return tx.Transfer(alice, bob, 11, models.TransferKindFunding, blockchain.SignerAuthorization{Signer: alice})
	})
	if !errcode.Is(err, errcode.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
}

func TestCreditOverflowRejected(t *testing.T) {
	l, _, _ := setupLedger(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	fund(t, l, alice, math.MaxInt64-5)
	fund(t, l, bob, 10)

	err := l.Execute(context.Background(), "airdrop", []solana.PublicKey{alice}, func(tx *Tx) error {
		return tx.Airdrop(alice, 10)
	})
	if !errcode.Is(err, errcode.BalanceOverflow) {
		t.Fatalf("airdrop: expected BalanceOverflow, got %v", err)
	}

	err = l.Execute(context.Background(), "pay", []solana.PublicKey{alice, bob}, func(tx *Tx) error {
		return tx.Transfer(bob, alice, 10, models.TransferKindFunding, blockchain.SignerAuthorization{Signer: bob})
	})
	if !errcode.Is(err, errcode.BalanceOverflow) {
		t.Fatalf("transfer: expected BalanceOverflow, got %v", err)
	}
	if got := balance(t, l, alice); got != math.MaxInt64-5 {
		t.Errorf("alice: balance changed to %d", got)
	}
	if got := balance(t, l, bob); got != 10 {
		t.Errorf("bob: expected 10, got %d", got)
	}

	carol := solana.NewWallet().PublicKey()
	err = l.Execute(context.Background(), "airdrop", []solana.PublicKey{carol}, func(tx *Tx) error {
		return tx.Airdrop(carol, 1<<63)
	})
	if !errcode.Is(err, errcode.BalanceOverflow) {
		t.Fatalf("high-bit airdrop: expected BalanceOverflow, got %v", err)
	}
	if got := balance(t, l, carol); got != 0 {
		t.Errorf("carol: expected 0, got %d", got)
	}
}

func TestZeroTransferSucceedsWithoutAccount(t *testing.T) {
	l, _, repo := setupLedger(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	err := l.Execute(context.Background(), "pay", nil, func(tx *Tx) error {
		return tx.Transfer(alice, bob, 0, models.TransferKindEntryFee, blockchain.SignerAuthorization{Signer: alice})
	})
	if err != nil {
		t.Fatalf("zero transfer failed: %v", err)
	}
	transfers, _ := repo.GetTransfers(context.Background(), bob.String(), 10)
	if len(transfers) != 0 {
		t.Errorf("zero transfer should not be journaled, got %d rows", len(transfers))
	}
}

func TestExecuteIsAllOrNothing(t *testing.T) {
	l, _, repo := setupLedger(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	fund(t, l, alice, 100)

	err := l.Execute(context.Background(), "create", nil, func(tx *Tx) error {
		c := &models.Competition{Address: "addr1", CompetitionID: "c1", Creator: alice.String(), Token: "SOL", Vault: bob.String()}
		if err := tx.CreateCompetition(c); err != nil {
			return err
		}
		if err := tx.Transfer(alice, bob, 50, models.TransferKindFunding, blockchain.SignerAuthorization{Signer: alice}); err != nil {
			return err
		}
		// second transfer fails: the record and the first transfer must vanish
		return tx.Transfer(alice, bob, 60, models.TransferKindFunding, blockchain.SignerAuthorization{Signer: alice})
	})
	if !errcode.Is(err, errcode.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}

	if got := balance(t, l, alice); got != 100 {
		t.Errorf("alice: expected 100 after rollback, got %d", got)
	}
	if got := balance(t, l, bob); got != 0 {
		t.Errorf("bob: expected 0 after rollback, got %d", got)
	}
	if _, err := repo.GetCompetitionByID(context.Background(), "c1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("competition record should not persist, got %v", err)
	}
}

func TestCreateRecordCollision(t *testing.T) {
	l, _, _ := setupLedger(t)
	create := func(tx *Tx) error {
		return tx.CreateCompetition(&models.Competition{Address: "addr1", CompetitionID: "c1", Creator: "a", Token: "SOL", Vault: "v"})
	}
	if err := l.Execute(context.Background(), "create", nil, create); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := l.Execute(context.Background(), "create", nil, create); !errcode.Is(err, errcode.AccountAlreadyInUse) {
		t.Fatalf("expected AccountAlreadyInUse, got %v", err)
	}
}

func TestLoadCompetitionNotFound(t *testing.T) {
	l, _, _ := setupLedger(t)
	err := l.Read(context.Background(), func(tx *Tx) error {
		_, err := tx.LoadCompetition(solana.NewWallet().PublicKey())
		return err
	})
	if !errcode.Is(err, errcode.CompetitionNotFound) {
		t.Fatalf("expected CompetitionNotFound, got %v", err)
	}
}

func TestAccountLocksSerializeAndRelease(t *testing.T) {
	l, _, _ := setupLedger(t)
	acct := solana.NewWallet().PublicKey()

	unlock := l.lockAccounts([]solana.PublicKey{acct, acct})

	var wg sync.WaitGroup
	acquired := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		u := l.lockAccounts([]solana.PublicKey{acct})
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second instruction acquired a held account")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.locks) != 0 {
		t.Errorf("expected lock table to be empty, got %d entries", len(l.locks))
	}
}
