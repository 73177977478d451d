package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role controls multi-user visibility, suspension authority, category
// management and the approvals workflow.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// TransactionType carries the direction of a transaction; amounts are
// always stored positive.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// TransactionStatus is the approval state of a transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxRejected  TransactionStatus = "rejected"
)

// NotificationType distinguishes informational notifications from
// actionable workflow requests.
type NotificationType string

const (
	NotifInvite        NotificationType = "invite"
	NotifInfo          NotificationType = "info"
	NotifAlert         NotificationType = "alert"
	NotifTransaction   NotificationType = "transaction"
	NotifAdmin         NotificationType = "admin"
	NotifJoinRequest   NotificationType = "join_request"
	NotifLeaveRequest  NotificationType = "leave_request"
	NotifWalletRequest NotificationType = "wallet_request"
)

// RequestStatus is the lifecycle of an actionable request. pending is the
// only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// Session is the authenticated principal as reported by the platform.
// Metadata carries identity attributes collected at sign-up or by a
// federated provider (name, full_name, avatar).
type Session struct {
	Token    string
	UserId   string
	Email    string
	Metadata map[string]string
}

// Profile is the application-level user record, 1:1 with an identity.
type Profile struct {
	Id          string    `db:"id"`
	Email       string    `db:"email"`
	Name        string    `db:"name"`
	Avatar      string    `db:"avatar"`
	Role        Role      `db:"role"`
	Bio         string    `db:"bio"`
	IsSuspended bool      `db:"is_suspended"`
	CreatedAt   time.Time `db:"created_at"`

	// Transient marks a locally synthesized profile that could not be
	// persisted; it is never written back and is superseded by the next
	// successful refresh once the row exists.
	Transient bool `db:"-"`
}

// Account is a single-owner personal wallet. Balance is a running total
// mutated only as a side effect of approved transactions.
type Account struct {
	Id          string          `db:"id"`
	UserId      string          `db:"user_id"`
	Name        string          `db:"name"`
	Balance     decimal.Decimal `db:"balance"`
	IsSuspended bool            `db:"is_suspended"`
	CreatedAt   time.Time       `db:"created_at"`

	// Owner is joined profile data, populated for admin-wide listings.
	Owner *Profile `db:"-"`
}

// GroupAccount is a shared family fund. The three member sets are pairwise
// disjoint at all times; transitions between them happen only through the
// join/leave workflow.
type GroupAccount struct {
	Id             string          `db:"id"`
	UserId         string          `db:"user_id"` // creator
	Name           string          `db:"name"`
	Balance        decimal.Decimal `db:"balance"`
	IsSuspended    bool            `db:"is_suspended"`
	Members        []string        `db:"members"`
	PendingMembers []string        `db:"pending_members"`
	LeavingMembers []string        `db:"leaving_members"`
	CreatedAt      time.Time       `db:"created_at"`
}

// HasMember reports whether id is a full member of the group.
func (g *GroupAccount) HasMember(id string) bool {
	return containsId(g.Members, id)
}

// ValidateMemberSets verifies the pairwise disjointness of the member,
// pending and leaving sets.
func (g *GroupAccount) ValidateMemberSets() error {
	if id := firstOverlap(g.Members, g.PendingMembers); id != "" {
		return &MemberSetOverlapError{GroupId: g.Id, ProfileId: id, Sets: "members/pending_members"}
	}
	if id := firstOverlap(g.Members, g.LeavingMembers); id != "" {
		return &MemberSetOverlapError{GroupId: g.Id, ProfileId: id, Sets: "members/leaving_members"}
	}
	if id := firstOverlap(g.PendingMembers, g.LeavingMembers); id != "" {
		return &MemberSetOverlapError{GroupId: g.Id, ProfileId: id, Sets: "pending_members/leaving_members"}
	}
	return nil
}

// MemberSetOverlapError reports a violated member-set disjointness invariant.
type MemberSetOverlapError struct {
	GroupId   string
	ProfileId string
	Sets      string
}

func (e *MemberSetOverlapError) Error() string {
	return "group " + e.GroupId + ": profile " + e.ProfileId + " present in both " + e.Sets
}

func containsId(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func firstOverlap(a, b []string) string {
	for _, v := range a {
		if containsId(b, v) {
			return v
		}
	}
	return ""
}

// Category is a global, admin-managed transaction label. Deleting one
// leaves historical transactions on a fallback label.
type Category struct {
	Id        string          `db:"id"`
	Name      string          `db:"name"`
	Type      TransactionType `db:"type"`
	Color     string          `db:"color"`
	Icon      string          `db:"icon"`
	IsDefault bool            `db:"is_default"`
}

// Transaction is an income/expense entry against a personal or group
// account. Shared records which of the two disjoint collections the row
// came from; a given id exists in exactly one of them.
type Transaction struct {
	Id         string            `db:"id"`
	AccountId  string            `db:"account_id"`
	Shared     bool              `db:"-"`
	Amount     decimal.Decimal   `db:"amount"`
	Type       TransactionType   `db:"type"`
	CategoryId string            `db:"category_id"`
	Date       time.Time         `db:"date"`
	Note       string            `db:"note"`
	CreatedBy  string            `db:"created_by"`
	Status     TransactionStatus `db:"status"`
	CreatedAt  time.Time         `db:"created_at"`

	// Joined data.
	Category *Category `db:"-"`
	Creator  *Profile  `db:"-"`
}

// SignedAmount is the amount with direction applied: positive for income,
// negative for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// NotificationData is the payload attached to a notification. It carries
// enough to resolve a workflow transition without re-deriving it from the
// notification text.
type NotificationData struct {
	GroupId      string `json:"groupId,omitempty"`
	RequesterId  string `json:"requesterId,omitempty"`
	FriendshipId string `json:"friendshipId,omitempty"`
	WalletName   string `json:"walletName,omitempty"`
	WalletType   string `json:"walletType,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Notification is a message to a single recipient; workflow requests are
// notifications with a pending status.
type Notification struct {
	Id        string           `db:"id"`
	UserId    string           `db:"user_id"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	Type      NotificationType `db:"type"`
	Status    RequestStatus    `db:"status"`
	IsRead    bool             `db:"is_read"`
	Data      NotificationData `db:"data"`
	CreatedAt time.Time        `db:"created_at"`
}

// ActionRequired reports whether the notification is a workflow request
// still awaiting an accept/reject decision.
func (n *Notification) ActionRequired() bool {
	switch n.Type {
	case NotifInvite, NotifJoinRequest, NotifLeaveRequest, NotifWalletRequest:
		return n.Status == RequestPending
	}
	return false
}

// Friendship connects two profiles for chat. Undirected once accepted;
// rejection is not modeled, only acceptance is observable.
type Friendship struct {
	Id          string        `db:"id"`
	RequesterId string        `db:"requester_id"`
	ReceiverId  string        `db:"receiver_id"`
	Status      RequestStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
}

// Message is a chat message, immutable once created.
type Message struct {
	Id         string    `db:"id"`
	SenderId   string    `db:"sender_id"`
	ReceiverId string    `db:"receiver_id"`
	Content    string    `db:"content"`
	IsRead     bool      `db:"is_read"`
	CreatedAt  time.Time `db:"created_at"`
}
