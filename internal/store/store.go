package store

import (
	"context"
	"errors"
	"time"

	"family-fund-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all platform implementations.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthorized      = errors.New("operation not authorized")
	ErrDuplicate          = errors.New("duplicate record")
)

// AuthEvent describes an auth-state transition delivered to subscribers.
type AuthEvent string

const (
	AuthSignedIn  AuthEvent = "SIGNED_IN"
	AuthSignedOut AuthEvent = "SIGNED_OUT"
)

// SignUpParams contains the parameters for registering a new identity.
// Name and Avatar become identity metadata, not a profile row; the profile
// is created lazily on first refresh.
type SignUpParams struct {
	Email    string
	Password string
	Name     string
	Avatar   string
}

// UpdateProfileParams is a partial profile update; nil fields are left
// untouched. Role and Suspended changes require admin capability and are
// enforced by callers, not the platform.
type UpdateProfileParams struct {
	Name      *string
	Bio       *string
	Avatar    *string
	Role      *models.Role
	Suspended *bool
}

// CreateTransactionParams contains the parameters for recording a new
// transaction. Shared selects the group_transactions collection. Amount
// must be positive; direction is carried by Type.
type CreateTransactionParams struct {
	AccountId  string
	Shared     bool
	Amount     decimal.Decimal
	Type       models.TransactionType
	CategoryId string
	Date       time.Time
	Note       string
	CreatedBy  string
}

// CreateNotificationParams contains the parameters for a new notification.
type CreateNotificationParams struct {
	UserId  string
	Title   string
	Message string
	Type    models.NotificationType
	Status  models.RequestStatus
	Data    models.NotificationData
}

// MemberSets is the full replacement state for a group account's three
// membership sets, written atomically by workflow transitions.
type MemberSets struct {
	Members        []string
	PendingMembers []string
	LeavingMembers []string
}

// Platform defines the data-access contract every backend must satisfy:
// auth, collection reads/writes and realtime message delivery. The hosted
// platform and the local SQLite backend both implement it.
type Platform interface {
	// --- Auth ---
	SignUp(ctx context.Context, params SignUpParams) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	OnAuthStateChange(fn func(AuthEvent, *models.Session)) (unsubscribe func())

	// --- Profiles ---
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	EnsureProfile(ctx context.Context, profile models.Profile) error
	UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) error
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	FirstAdmin(ctx context.Context) (*models.Profile, error)

	// --- Accounts ---
	ListAccounts(ctx context.Context, ownerId string) ([]models.Account, error)
	CreateAccount(ctx context.Context, ownerId, name string) (*models.Account, error)
	RenameAccount(ctx context.Context, id, name string) error
	SetAccountSuspended(ctx context.Context, id string, suspended bool) error
	DeleteAccount(ctx context.Context, id string) error

	// --- Group accounts ---
	ListGroupAccounts(ctx context.Context) ([]models.GroupAccount, error)
	GetGroupAccount(ctx context.Context, id string) (*models.GroupAccount, error)
	CreateGroupAccount(ctx context.Context, creatorId, name string) (*models.GroupAccount, error)
	UpdateGroupMembers(ctx context.Context, id string, sets MemberSets) error
	SetGroupAccountSuspended(ctx context.Context, id string, suspended bool) error

	// --- Categories ---
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, category models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// --- Transactions ---
	ListTransactions(ctx context.Context, shared bool, limit int) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error)
	SetTransactionStatus(ctx context.Context, id string, shared bool, status models.TransactionStatus) error

	// --- Notifications ---
	ListNotifications(ctx context.Context, userId string) ([]models.Notification, error)
	CreateNotification(ctx context.Context, params CreateNotificationParams) (*models.Notification, error)
	ResolveNotification(ctx context.Context, id string, status models.RequestStatus) error
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, userId string) error

	// --- Friendships ---
	CreateFriendship(ctx context.Context, requesterId, receiverId string) (*models.Friendship, error)
	AcceptFriendship(ctx context.Context, id string) error
	ListFriendships(ctx context.Context, userId string, status models.RequestStatus) ([]models.Friendship, error)

	// --- Messages ---
	InsertMessage(ctx context.Context, senderId, receiverId, content string) (*models.Message, error)
	ListMessages(ctx context.Context, userA, userB string, limit int) ([]models.Message, error)
	SubscribeMessages(receiverId string, fn func(models.Message)) (unsubscribe func(), err error)

	// --- Lifecycle ---
	Close()
}
