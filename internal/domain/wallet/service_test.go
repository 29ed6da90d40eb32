package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parkspot/internal/pkg/testdb"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t, &Wallet{}, &Transaction{})
	return NewService(db), db
}

func TestGetOrCreateWalletCreatesOnFirstRequest(t *testing.T) {
	svc, _ := setupTestService(t)

	wallet, err := svc.GetOrCreateWallet(context.Background(), 1001)
	if err != nil {
		t.Fatalf("GetOrCreateWallet returned error: %v", err)
	}
	if wallet.Balance != 0 {
		t.Fatalf("expected zero initial balance, got %v", wallet.Balance)
	}

	again, err := svc.GetOrCreateWallet(context.Background(), 1001)
	if err != nil {
		t.Fatalf("GetOrCreateWallet second call returned error: %v", err)
	}
	if wallet.ID != again.ID {
		t.Fatalf("expected same wallet id, got %s and %s", wallet.ID, again.ID)
	}
}

func TestCreditTxPostsEarnings(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, _, err := CreditTx(tx, Credit{OwnerID: 7, BookingID: 1, Amount: 85, Type: TransactionTypeEarning, Reference: EarningReference(1)}); err != nil {
			return err
		}
		_, _, err := CreditTx(tx, Credit{OwnerID: 7, BookingID: 2, Amount: 12.5, Type: TransactionTypeEarning, Reference: EarningReference(2)})
		return err
	})
	if err != nil {
		t.Fatalf("CreditTx returned error: %v", err)
	}

	wallet, err := svc.GetOrCreateWallet(ctx, 7)
	if err != nil {
		t.Fatalf("GetOrCreateWallet returned error: %v", err)
	}
	if wallet.Balance != 97.5 {
		t.Fatalf("expected balance 97.5, got %v", wallet.Balance)
	}

	txns, err := svc.ListTransactions(ctx, 7)
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
}

func TestCreditTxIsIdempotentPerReference(t *testing.T) {
	svc, db := setupTestService(t)

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, _, err := CreditTx(tx, Credit{OwnerID: 9, BookingID: 5, Amount: 40, Type: TransactionTypeEarning, Reference: EarningReference(5)})
			return err
		})
		if err != nil {
			t.Fatalf("CreditTx attempt %d returned error: %v", i, err)
		}
	}

	wallet, err := svc.GetOrCreateWallet(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetOrCreateWallet returned error: %v", err)
	}
	if wallet.Balance != 40 {
		t.Fatalf("expected balance 40 after duplicate posting, got %v", wallet.Balance)
	}
}

func TestCreditTxRejectsNegativeAmount(t *testing.T) {
	_, db := setupTestService(t)

	_, _, err := CreditTx(db, Credit{OwnerID: 1, Amount: -1, Reference: "x"})
	if err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreditTxAllowsZeroAmount(t *testing.T) {
	_, db := setupTestService(t)

	wallet, _, err := CreditTx(db, Credit{OwnerID: 3, BookingID: 9, Amount: 0, Type: TransactionTypeEarning, Reference: EarningReference(9)})
	if err != nil {
		t.Fatalf("CreditTx returned error: %v", err)
	}
	if wallet.Balance != 0 {
		t.Fatalf("expected zero balance, got %v", wallet.Balance)
	}
	if ErrInvalidAmount.Error() != "amount must not be negative" {
		t.Fatalf("unexpected error text %q", ErrInvalidAmount.Error())
	}
}

// A concurrent transaction may create the owner's wallet between our lookup
// and our insert. The insert must not fail the surrounding transaction.
func TestCreditTxToleratesWalletCreatedConcurrently(t *testing.T) {
	_, db := setupTestService(t)
	rival := uuid.New()

	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:rival_wallet", func(d *gorm.DB) {
		if fired || d.Statement.Table != "owner_wallets" {
			return
		}
		fired = true
		d.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO owner_wallets (id, user_id, balance, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)", rival.String(), 55, 10.0)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	var credited *Wallet
	err = db.Transaction(func(tx *gorm.DB) error {
		w, _, err := CreditTx(tx, Credit{OwnerID: 55, BookingID: 4, Amount: 20, Type: TransactionTypeEarning, Reference: EarningReference(4)})
		if err != nil {
			return err
		}
		credited = w

		var count int64
		return tx.Model(&Transaction{}).Where("wallet_id = ?", w.ID).Count(&count).Error
	})
	if err != nil {
		t.Fatalf("CreditTx returned error: %v", err)
	}
	if !fired {
		t.Fatalf("expected the rival insert to run")
	}
	if credited.ID != rival {
		t.Fatalf("expected the existing wallet %s, got %s", rival, credited.ID)
	}
	if credited.Balance != 30 {
		t.Fatalf("expected balance 30, got %v", credited.Balance)
	}

	var wallets int64
	db.Model(&Wallet{}).Where("user_id = ?", 55).Count(&wallets)
	if wallets != 1 {
		t.Fatalf("expected one wallet, got %d", wallets)
	}
}
