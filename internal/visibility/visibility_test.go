package visibility

import (
	"testing"

	"family-fund-go/internal/models"

	"github.com/shopspring/decimal"
)

var (
	admin  = &models.Profile{Id: "admin1", Role: models.RoleAdmin}
	member = &models.Profile{Id: "member1", Role: models.RoleMember}
)

func TestCapabilitiesFor(t *testing.T) {
	if caps := CapabilitiesFor(admin); !caps.SeeAllAccounts || !caps.ApproveTransactions {
		t.Errorf("Admin missing capabilities: %+v", caps)
	}
	if caps := CapabilitiesFor(member); caps != (Capabilities{}) {
		t.Errorf("Member has unexpected capabilities: %+v", caps)
	}
	if caps := CapabilitiesFor(nil); caps != (Capabilities{}) {
		t.Errorf("Nil profile has capabilities: %+v", caps)
	}
}

func TestVisibleAccounts(t *testing.T) {
	accounts := []models.Account{
		{Id: "a1", UserId: "member1"},
		{Id: "a2", UserId: "member2"},
	}

	if got := VisibleAccounts(admin, accounts); len(got) != 2 {
		t.Errorf("Admin should see all accounts, got %d", len(got))
	}
	got := VisibleAccounts(member, accounts)
	if len(got) != 1 || got[0].Id != "a1" {
		t.Errorf("Member should see only their own account, got %+v", got)
	}
	if got := VisibleAccounts(nil, accounts); got != nil {
		t.Errorf("Nil viewer should see nothing, got %+v", got)
	}
}

func TestPartitionGroupsAndMask(t *testing.T) {
	groups := []models.GroupAccount{
		{Id: "g1", Members: []string{"member1"}, Balance: decimal.NewFromInt(800)},
		{Id: "g2", Members: []string{"member2"}, Balance: decimal.NewFromInt(300)},
	}

	joined, available := PartitionGroups(member, groups)
	if len(joined) != 1 || joined[0].Id != "g1" {
		t.Errorf("Expected g1 joined, got %+v", joined)
	}
	if len(available) != 1 || available[0].Id != "g2" {
		t.Errorf("Expected g2 available, got %+v", available)
	}

	if balance, masked := MaskedBalance(member, &groups[0]); masked || !balance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Joined fund should show real balance, got %s masked=%v", balance, masked)
	}
	if balance, masked := MaskedBalance(member, &groups[1]); !masked || !balance.IsZero() {
		t.Errorf("Unjoined fund should be masked, got %s masked=%v", balance, masked)
	}
}

func TestBucketTransactions(t *testing.T) {
	accounts := []models.Account{
		{Id: "mine", UserId: "admin1"},
		{Id: "theirs", UserId: "member2"},
	}
	txs := []models.Transaction{
		{Id: "t1", AccountId: "fund", Shared: true},
		{Id: "t2", AccountId: "mine"},
		{Id: "t3", AccountId: "theirs"},
	}

	buckets := BucketTransactions(admin, txs, accounts)
	if len(buckets.Fund) != 1 || buckets.Fund[0].Id != "t1" {
		t.Errorf("Fund bucket wrong: %+v", buckets.Fund)
	}
	if len(buckets.Personal) != 1 || buckets.Personal[0].Id != "t2" {
		t.Errorf("Personal bucket wrong: %+v", buckets.Personal)
	}
	if len(buckets.Users) != 1 || buckets.Users[0].Id != "t3" {
		t.Errorf("Users bucket wrong: %+v", buckets.Users)
	}

	total := len(buckets.Fund) + len(buckets.Personal) + len(buckets.Users)
	if total != len(txs) {
		t.Errorf("Buckets not exhaustive: %d of %d", total, len(txs))
	}
}

func TestCanModify(t *testing.T) {
	own := &models.Account{Id: "a1", UserId: "member1"}
	other := &models.Account{Id: "a2", UserId: "member2"}

	if !CanModifyAccount(member, own) {
		t.Error("Owner should modify their own account")
	}
	if CanModifyAccount(member, other) {
		t.Error("Member should not modify another user's account")
	}
	if !CanModifyAccount(admin, other) {
		t.Error("Admin should modify any account")
	}

	if CanModifyGroup(member) {
		t.Error("Member should not modify groups")
	}
	if !CanModifyGroup(admin) {
		t.Error("Admin should modify groups")
	}

	if !CanEditProfile(member, "member1") {
		t.Error("User should edit their own profile")
	}
	if CanEditProfile(member, "member2") {
		t.Error("Member should not edit another profile")
	}
	if !CanEditProfile(admin, "member2") {
		t.Error("Admin should edit any profile")
	}
}
