package services

import (
	"ledgerly/internal/models"
	"ledgerly/internal/oauth"
	"ledgerly/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateProfile(userID string, input ProfileUpdate) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	FindOrCreateGoogleUser(profile *oauth.Profile) (*models.User, bool, error)
	LinkGoogleAccount(userID string, profile *oauth.Profile) (*models.User, error)
	UnlinkGoogleAccount(userID string) (*models.User, error)
}

// SpaceServicer defines the contract for space membership.
type SpaceServicer interface {
	CreateSpace(userID, name string, spaceType models.SpaceType) (*models.Space, error)
	EnsurePersonalSpace(userID string) (*models.Space, error)
	GetUserSpaces(userID string) ([]models.Space, error)
	GetSpaceByID(userID, spaceID string) (*models.Space, error)
	AddMember(userID, spaceID, email string) (*models.SpaceMember, error)
	RemoveMember(userID, spaceID, memberUserID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, input CategoryInput) (*models.Category, error)
	GetCategories(userID string, filter CategoryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, input CategoryUpdate) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	GetDefaultCategories(userID, spaceID string) ([]models.Category, error)
}

// PaymentMethodServicer defines the contract for payment method business logic.
type PaymentMethodServicer interface {
	CreatePaymentMethod(userID string, input PaymentMethodInput) (*models.PaymentMethod, error)
	GetPaymentMethods(userID string, filter PaymentMethodFilter, page pagination.PageRequest) (*pagination.PageResponse[models.PaymentMethod], error)
	GetPaymentMethodByID(userID, paymentMethodID string) (*models.PaymentMethod, error)
	UpdatePaymentMethod(userID, paymentMethodID string, input PaymentMethodUpdate) (*models.PaymentMethod, error)
	DeletePaymentMethod(userID, paymentMethodID string) error
	GetDefaultPaymentMethods(userID, spaceID string) ([]models.PaymentMethod, error)
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, input TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) (*models.Transaction, error)
	GetTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	SearchTransactions(userID, query, spaceID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionStats(userID string, filter TransactionFilter) (*TransactionStats, error)
}

// BulkServicer defines the contract for operations over many transactions.
type BulkServicer interface {
	BulkCreate(userID, spaceID string, items []BulkTransactionItem) (*BulkResult, error)
	BulkUpdate(userID string, ids []string, fields BulkUpdateFields) (*BulkResult, error)
	BulkDelete(userID string, ids []string) (*BulkResult, error)
	BulkDuplicate(userID string, ids []string) (*BulkResult, error)
	BulkCategorize(userID string, ids []string, categoryID string) (*BulkResult, error)
	BulkTag(userID string, ids []string, tags []string, op TagOperation) (*BulkResult, error)
	BulkExport(userID string, ids []string, filter TransactionFilter, format ExportFormat) (*ExportFile, error)
}

// TemplateServicer defines the contract for transaction templates.
type TemplateServicer interface {
	CreateTemplate(userID string, input TemplateInput) (*models.TransactionTemplate, error)
	GetTemplates(userID string, filter TemplateFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionTemplate], error)
	GetTemplateByID(userID, templateID string) (*models.TransactionTemplate, error)
	UpdateTemplate(userID, templateID string, input TemplateUpdate) (*models.TransactionTemplate, error)
	DeleteTemplate(userID, templateID string) error
	CreateTransactionFromTemplate(userID, templateID string, overrides TemplateOverrides) (*models.Transaction, error)
	GetPopularTemplates(userID, spaceID string, limit int) ([]models.TransactionTemplate, error)
	DuplicateTemplate(userID, templateID, name string) (*models.TransactionTemplate, error)
	GetTemplateStats(userID, spaceID string) (*TemplateStats, error)
}

// AnalyticsServicer defines the contract for reporting over transactions.
type AnalyticsServicer interface {
	GetSpendingTrends(userID string, period TrendPeriod, filter TransactionFilter) ([]TrendPoint, error)
	GetCategoryAnalysis(userID string, txType models.TransactionType, filter TransactionFilter) ([]CategoryAnalysis, error)
	GetPaymentMethodAnalysis(userID string, filter TransactionFilter) ([]PaymentMethodAnalysis, error)
	GetMonthlyComparison(userID, spaceID string) (*MonthlyComparison, error)
	GetFinancialHealth(userID string, filter TransactionFilter) (*FinancialHealth, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
