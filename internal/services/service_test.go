package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nkoutras/go-study-backend/internal/assistant"
	"github.com/nkoutras/go-study-backend/internal/billing"
	"github.com/nkoutras/go-study-backend/internal/domain"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	err = db.AutoMigrate(
		&domain.HistoryRecord{},
		&domain.CreditAccount{},
		&domain.CreditGrant{},
		&domain.EntitlementSnapshot{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeProvider is an in-memory billing.Provider with scriptable failures.
type fakeProvider struct {
	balance      int64
	grantKeys    map[string]bool
	entitlements billing.Entitlements
	purchase     *billing.PurchaseResult

	failBalance  bool
	failDebit    bool
	failPurchase error
	failRestore  bool

	debits    int
	grants    int
	purchases int
}

func newFakeProvider(balance int64) *fakeProvider {
	return &fakeProvider{balance: balance, grantKeys: map[string]bool{}}
}

func (f *fakeProvider) Balance(ctx context.Context, userID string) (int64, error) {
	if f.failBalance {
		return 0, billing.ErrUnavailable
	}
	return f.balance, nil
}

func (f *fakeProvider) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	f.debits++
	if f.failDebit {
		return 0, billing.ErrUnavailable
	}
	if f.balance < amount {
		return 0, billing.ErrInsufficient
	}
	f.balance -= amount
	return f.balance, nil
}

func (f *fakeProvider) Grant(ctx context.Context, userID string, amount int64, key string) (int64, error) {
	f.grants++
	if !f.grantKeys[key] {
		f.grantKeys[key] = true
		f.balance += amount
	}
	return f.balance, nil
}

func (f *fakeProvider) Packages(ctx context.Context) ([]billing.Package, error) {
	return []billing.Package{{ID: "credits_100", Credits: 100, Price: 4.99, Currency: "USD"}}, nil
}

func (f *fakeProvider) Purchase(ctx context.Context, userID, packageID string) (*billing.PurchaseResult, error) {
	f.purchases++
	if f.failPurchase != nil {
		return nil, f.failPurchase
	}
	return f.purchase, nil
}

func (f *fakeProvider) Restore(ctx context.Context, userID string) (*billing.Entitlements, error) {
	if f.failRestore {
		return nil, billing.ErrUnavailable
	}
	return &f.entitlements, nil
}

func (f *fakeProvider) Entitlements(ctx context.Context, userID string) (*billing.Entitlements, error) {
	if f.failRestore {
		return nil, billing.ErrUnavailable
	}
	return &f.entitlements, nil
}

// fakeAssistant returns canned answers, or fails when told to.
type fakeAssistant struct {
	answer   string
	scan     *assistant.ScanResult
	mindmap  string
	fail     bool
	textCall int
}

func (f *fakeAssistant) AnswerFromText(ctx context.Context, text string, kind domain.FeatureKind) (string, error) {
	f.textCall++
	if f.fail {
		return "", assistant.ErrUnavailable
	}
	return f.answer, nil
}

func (f *fakeAssistant) AnswerFromImage(ctx context.Context, imageURI string) (*assistant.ScanResult, error) {
	if f.fail {
		return nil, assistant.ErrUnavailable
	}
	return f.scan, nil
}

func (f *fakeAssistant) MindMap(ctx context.Context, content, mode string) (string, error) {
	if f.fail {
		return "", assistant.ErrUnavailable
	}
	return f.mindmap, nil
}
