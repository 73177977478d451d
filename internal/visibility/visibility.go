// Package visibility is the single place role-scoped access rules live.
// Every list/detail consumer goes through these predicates instead of
// branching on the role inline.
package visibility

import (
	"family-fund-go/internal/models"

	"github.com/shopspring/decimal"
)

// Capabilities is the capability set derived once per profile and
// threaded through view logic.
type Capabilities struct {
	SeeAllAccounts      bool
	SuspendAny          bool
	ManageCategories    bool
	ApproveTransactions bool
	EditProfiles        bool
}

// CapabilitiesFor derives the capability set for a profile. A nil profile
// has no capabilities.
func CapabilitiesFor(profile *models.Profile) Capabilities {
	if profile == nil || profile.Role != models.RoleAdmin {
		return Capabilities{}
	}
	return Capabilities{
		SeeAllAccounts:      true,
		SuspendAny:          true,
		ManageCategories:    true,
		ApproveTransactions: true,
		EditProfiles:        true,
	}
}

// VisibleAccounts filters personal accounts to what the viewer may see:
// members see only their own, admins see everything.
func VisibleAccounts(viewer *models.Profile, accounts []models.Account) []models.Account {
	if viewer == nil {
		return nil
	}
	if CapabilitiesFor(viewer).SeeAllAccounts {
		return accounts
	}
	var visible []models.Account
	for i := range accounts {
		if accounts[i].UserId == viewer.Id {
			visible = append(visible, accounts[i])
		}
	}
	return visible
}

// PartitionGroups splits group accounts into funds the viewer has joined
// and funds merely available to request. Balances of available funds are
// masked for display via MaskedBalance.
func PartitionGroups(viewer *models.Profile, groups []models.GroupAccount) (joined, available []models.GroupAccount) {
	for i := range groups {
		if viewer != nil && groups[i].HasMember(viewer.Id) {
			joined = append(joined, groups[i])
		} else {
			available = append(available, groups[i])
		}
	}
	return joined, available
}

// MaskedBalance returns the displayable balance of a group account and
// whether it is masked. Funds the viewer has not joined are masked.
// This is a presentation mask, not a security boundary: the fetched
// payload already carries the real balance.
func MaskedBalance(viewer *models.Profile, group *models.GroupAccount) (decimal.Decimal, bool) {
	if viewer != nil && group.HasMember(viewer.Id) {
		return group.Balance, false
	}
	return decimal.Zero, true
}

// Buckets is the three-way display partition of a merged transaction
// list. The buckets are disjoint and exhaustive.
type Buckets struct {
	Fund     []models.Transaction // against any group account
	Personal []models.Transaction // against an account the viewer owns
	Users    []models.Transaction // other users' personal transactions; admin viewers only
}

// BucketTransactions partitions the merged list for display. Anything not
// a fund transaction and not against the viewer's own accounts can only
// be another user's personal transaction, which non-admin viewers never
// fetched in the first place.
func BucketTransactions(viewer *models.Profile, txs []models.Transaction, accounts []models.Account) Buckets {
	owned := make(map[string]struct{})
	if viewer != nil {
		for i := range accounts {
			if accounts[i].UserId == viewer.Id {
				owned[accounts[i].Id] = struct{}{}
			}
		}
	}

	var buckets Buckets
	for i := range txs {
		t := txs[i]
		switch {
		case t.Shared:
			buckets.Fund = append(buckets.Fund, t)
		default:
			if _, ok := owned[t.AccountId]; ok {
				buckets.Personal = append(buckets.Personal, t)
			} else {
				buckets.Users = append(buckets.Users, t)
			}
		}
	}
	return buckets
}

// CanModifyAccount reports whether the viewer may edit, suspend or delete
// a personal account: ownership or admin role.
func CanModifyAccount(viewer *models.Profile, account *models.Account) bool {
	if viewer == nil {
		return false
	}
	return account.UserId == viewer.Id || CapabilitiesFor(viewer).SuspendAny
}

// CanModifyGroup reports whether the viewer may edit or suspend a group
// account: admin only.
func CanModifyGroup(viewer *models.Profile) bool {
	return CapabilitiesFor(viewer).SuspendAny
}

// CanEditProfile reports whether the viewer may edit the target profile:
// self for name/bio/avatar, admin for anyone.
func CanEditProfile(viewer *models.Profile, targetId string) bool {
	if viewer == nil {
		return false
	}
	return viewer.Id == targetId || CapabilitiesFor(viewer).EditProfiles
}
