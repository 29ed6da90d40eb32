package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkspot/internal/domain/pricing"
)

var ErrInvalidAmount = errors.New("amount must not be negative")

// Credit describes a posting made as a side effect of a booking transition.
type Credit struct {
	OwnerID   int64
	BookingID int64
	Amount    float64
	Type      string
	Reference string
}

func EarningReference(bookingID int64) string {
	return fmt.Sprintf("booking:%d:earning", bookingID)
}

func ExtensionReference(requestID int64) string {
	return fmt.Sprintf("request:%d:extension", requestID)
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetOrCreateWallet(ctx context.Context, userID int64) (*Wallet, error) {
	wallet, err := s.getWalletByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &Wallet{UserID: userID}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.getWalletByUserID(ctx, userID)
		}
		return nil, err
	}
	return wallet, nil
}

// CreditTx posts c on the caller's transaction. A posting whose reference
// already exists is returned as is and the balance is left alone.
func CreditTx(tx *gorm.DB, c Credit) (*Wallet, *Transaction, error) {
	if c.Amount < 0 {
		return nil, nil, ErrInvalidAmount
	}

	var wallet Wallet
	if err := getOrCreateWalletForUpdate(tx, c.OwnerID, &wallet); err != nil {
		return nil, nil, err
	}

	var existing Transaction
	err := tx.Where("reference = ?", c.Reference).First(&existing).Error
	if err == nil {
		return &wallet, &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	wallet.Balance = pricing.Add(wallet.Balance, c.Amount)
	if err := tx.Model(&Wallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error; err != nil {
		return nil, nil, err
	}

	txn := Transaction{
		WalletID:  wallet.ID,
		BookingID: c.BookingID,
		Amount:    c.Amount,
		Type:      c.Type,
		Reference: c.Reference,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, nil, err
	}
	return &wallet, &txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var txns []Transaction
	if err := s.db.WithContext(ctx).Where("wallet_id = ?", wallet.ID).Order("created_at desc").Find(&txns).Error; err != nil {
		return nil, err
	}

	return txns, nil
}

func (s *Service) getWalletByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	var wallet Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// getOrCreateWalletForUpdate runs inside a caller's transaction, where a
// failed INSERT would abort the whole transaction on Postgres. The insert
// therefore skips conflicts instead of raising them, and the row is then
// read back under lock.
func getOrCreateWalletForUpdate(tx *gorm.DB, userID int64, wallet *Wallet) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(wallet).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	fresh := Wallet{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return err
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(wallet).Error
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
