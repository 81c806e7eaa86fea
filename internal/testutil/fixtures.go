package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ledgerly/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a verified user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:           email,
		Password:        string(hash),
		IsActive:        true,
		IsEmailVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSpace creates a personal space owned by ownerID.
func CreateTestSpace(t *testing.T, db *gorm.DB, ownerID string) *models.Space {
	t.Helper()
	return CreateTestSpaceOfType(t, db, ownerID, models.SpaceTypePersonal)
}

// CreateTestSpaceOfType creates a space of the given type with its owner membership.
func CreateTestSpaceOfType(t *testing.T, db *gorm.DB, ownerID string, spaceType models.SpaceType) *models.Space {
	t.Helper()

	space := &models.Space{
		Name:    fmt.Sprintf("Test Space %d", nextID()),
		Type:    spaceType,
		OwnerID: ownerID,
	}
	if err := db.Create(space).Error; err != nil {
		t.Fatalf("failed to create test space: %v", err)
	}
	member := &models.SpaceMember{SpaceID: space.ID, UserID: ownerID, Role: models.SpaceRoleOwner}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test space member: %v", err)
	}
	return space
}

// AddTestMember adds userID to spaceID as a regular member.
func AddTestMember(t *testing.T, db *gorm.DB, spaceID, userID string) {
	t.Helper()

	member := &models.SpaceMember{SpaceID: spaceID, UserID: userID, Role: models.SpaceRoleMember}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
}

// CreateTestCategory creates an active category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, spaceID, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, spaceID, userID, categoryType, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates an active category with an explicit name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, spaceID, userID string, categoryType models.CategoryType, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		SpaceID:   spaceID,
		CreatedBy: userID,
		Name:      name,
		Type:      categoryType,
		Color:     "#336699",
		IsActive:  true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestPaymentMethod creates an active cash payment method.
func CreateTestPaymentMethod(t *testing.T, db *gorm.DB, spaceID, userID string) *models.PaymentMethod {
	t.Helper()

	pm := &models.PaymentMethod{
		SpaceID:   spaceID,
		CreatedBy: userID,
		Name:      fmt.Sprintf("Test Payment Method %d", nextID()),
		Type:      models.PaymentMethodTypeCash,
		IsActive:  true,
	}
	if err := db.Create(pm).Error; err != nil {
		t.Fatalf("failed to create test payment method: %v", err)
	}
	return pm
}

// TransactionOpt customizes a fixture transaction before insert.
type TransactionOpt func(*models.Transaction)

// WithDate sets the transaction date.
func WithDate(d time.Time) TransactionOpt {
	return func(tx *models.Transaction) { tx.Date = d }
}

// WithTags sets the transaction tags.
func WithTags(tags ...string) TransactionOpt {
	return func(tx *models.Transaction) { tx.Tags = tags }
}

// WithDescription sets the transaction description.
func WithDescription(desc string) TransactionOpt {
	return func(tx *models.Transaction) { tx.Description = desc }
}

// CreateTestTransaction creates a transaction of the given type and amount (in cents).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, category *models.Category, pm *models.PaymentMethod, txType models.TransactionType, amount int64, opts ...TransactionOpt) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		SpaceID:         category.SpaceID,
		UserID:          userID,
		Type:            txType,
		Amount:          amount,
		Description:     fmt.Sprintf("Test Transaction %d", nextID()),
		CategoryID:      category.ID,
		PaymentMethodID: pm.ID,
		Date:            time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(tx)
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTemplate creates an active expense template.
func CreateTestTemplate(t *testing.T, db *gorm.DB, userID string, category *models.Category, pm *models.PaymentMethod, amount int64, tags ...string) *models.TransactionTemplate {
	t.Helper()

	tmpl := &models.TransactionTemplate{
		SpaceID:         category.SpaceID,
		UserID:          userID,
		Name:            fmt.Sprintf("Test Template %d", nextID()),
		Description:     "Template transaction",
		Type:            models.TransactionTypeExpense,
		Amount:          amount,
		CategoryID:      category.ID,
		PaymentMethodID: pm.ID,
		Tags:            tags,
		IsActive:        true,
	}
	if err := db.Create(tmpl).Error; err != nil {
		t.Fatalf("failed to create test template: %v", err)
	}
	return tmpl
}
