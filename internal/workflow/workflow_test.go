package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"family-fund-go/internal/database"
	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

func newTestPlatform(t *testing.T) store.Platform {
	t.Helper()

	cfg := models.DatabaseConfig{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
	}
	platform, err := database.NewService(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(platform.Close)
	return platform
}

func seedProfiles(t *testing.T, platform store.Platform) (admin, member *models.Profile) {
	t.Helper()
	ctx := context.Background()

	adminProfile := models.Profile{Id: "admin1", Email: "admin@example.com", Name: "Ada", Role: models.RoleAdmin}
	memberProfile := models.Profile{Id: "member1", Email: "member@example.com", Name: "Max", Role: models.RoleMember}
	if err := platform.EnsureProfile(ctx, adminProfile); err != nil {
		t.Fatalf("EnsureProfile admin failed: %v", err)
	}
	if err := platform.EnsureProfile(ctx, memberProfile); err != nil {
		t.Fatalf("EnsureProfile member failed: %v", err)
	}
	return &adminProfile, &memberProfile
}

func assertDisjoint(t *testing.T, group *models.GroupAccount) {
	t.Helper()
	if err := group.ValidateMemberSets(); err != nil {
		t.Errorf("Member sets overlap after transition: %v", err)
	}
}

func pendingRequest(t *testing.T, platform store.Platform, userId string) *models.Notification {
	t.Helper()
	notifications, err := platform.ListNotifications(context.Background(), userId)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	for i := range notifications {
		if notifications[i].ActionRequired() {
			return &notifications[i]
		}
	}
	t.Fatalf("No pending request notification for %s", userId)
	return nil
}

func TestJoinRequest_AcceptMovesPendingToMembers(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()
	admin, member := seedProfiles(t, platform)

	group, err := platform.CreateGroupAccount(ctx, admin.Id, "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}

	if err := service.RequestJoin(ctx, member, group.Id); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}

	mid, err := platform.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	assertDisjoint(t, mid)
	if len(mid.PendingMembers) != 1 || mid.PendingMembers[0] != member.Id {
		t.Fatalf("Expected member pending, got %v", mid.PendingMembers)
	}

	request := pendingRequest(t, platform, admin.Id)
	if request.Type != models.NotifJoinRequest || request.Data.GroupId != group.Id {
		t.Fatalf("Unexpected request notification: %+v", request)
	}

	if err := service.Resolve(ctx, admin, request, true); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	after, err := platform.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	assertDisjoint(t, after)
	if !after.HasMember(member.Id) {
		t.Errorf("Expected member joined, got %v", after.Members)
	}
	if len(after.PendingMembers) != 0 {
		t.Errorf("Expected empty pending set, got %v", after.PendingMembers)
	}

	resolved := pendingIsResolved(t, platform, admin.Id, request.Id)
	if resolved.Status != models.RequestAccepted || !resolved.IsRead {
		t.Errorf("Expected accepted+read notification, got %+v", resolved)
	}
}

func TestJoinRequest_RejectOnlyClearsPending(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()
	admin, member := seedProfiles(t, platform)

	group, err := platform.CreateGroupAccount(ctx, admin.Id, "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}
	if err := service.RequestJoin(ctx, member, group.Id); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}

	request := pendingRequest(t, platform, admin.Id)
	if err := service.Resolve(ctx, admin, request, false); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	after, err := platform.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	assertDisjoint(t, after)
	if after.HasMember(member.Id) {
		t.Error("Rejected requester must not be a member")
	}
	if len(after.PendingMembers) != 0 {
		t.Errorf("Expected empty pending set, got %v", after.PendingMembers)
	}

	// A rejected requester can ask again; each request is independent.
	if err := service.RequestJoin(ctx, member, group.Id); err != nil {
		t.Errorf("Re-request after rejection failed: %v", err)
	}
}

func TestLeaveRequest_Transitions(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()
	admin, member := seedProfiles(t, platform)

	group, err := platform.CreateGroupAccount(ctx, admin.Id, "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}
	if err := platform.UpdateGroupMembers(ctx, group.Id, store.MemberSets{Members: []string{admin.Id, member.Id}}); err != nil {
		t.Fatalf("UpdateGroupMembers failed: %v", err)
	}

	if err := service.RequestLeave(ctx, member, group.Id); err != nil {
		t.Fatalf("RequestLeave failed: %v", err)
	}

	mid, err := platform.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	assertDisjoint(t, mid)
	if len(mid.LeavingMembers) != 1 || mid.LeavingMembers[0] != member.Id {
		t.Fatalf("Expected member leaving, got %v", mid.LeavingMembers)
	}

	// Declined: the member is restored.
	request := pendingRequest(t, platform, admin.Id)
	if err := service.Resolve(ctx, admin, request, false); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	restored, err := platform.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	assertDisjoint(t, restored)
	if !restored.HasMember(member.Id) || len(restored.LeavingMembers) != 0 {
		t.Fatalf("Expected member restored, got %+v", restored)
	}

	// Second attempt, accepted this time: the member departs.
	if err := service.RequestLeave(ctx, member, group.Id); err != nil {
		t.Fatalf("Second RequestLeave failed: %v", err)
	}
	request = pendingRequest(t, platform, admin.Id)
	if err := service.Resolve(ctx, admin, request, true); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	after, err := platform.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	assertDisjoint(t, after)
	if after.HasMember(member.Id) || len(after.LeavingMembers) != 0 {
		t.Errorf("Expected member departed, got %+v", after)
	}
}

func TestResolve_RequiresRecipientAndAdmin(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()
	admin, member := seedProfiles(t, platform)

	group, err := platform.CreateGroupAccount(ctx, admin.Id, "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}
	if err := service.RequestJoin(ctx, member, group.Id); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	request := pendingRequest(t, platform, admin.Id)

	// Addressed to the admin, so the requester cannot resolve it.
	if err := service.Resolve(ctx, member, request, true); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized for non-recipient, got %v", err)
	}

	// Double resolution is rejected.
	if err := service.Resolve(ctx, admin, request, true); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	resolved := pendingIsResolved(t, platform, admin.Id, request.Id)
	if err := service.Resolve(ctx, admin, resolved, false); err == nil {
		t.Error("Expected error resolving an already resolved request")
	}
}

func TestWalletRequest_RoutesToFirstAdmin(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()
	admin, member := seedProfiles(t, platform)

	if err := service.RequestWallet(ctx, member, "Travel", "personal", "Saving for a trip"); err != nil {
		t.Fatalf("RequestWallet failed: %v", err)
	}

	request := pendingRequest(t, platform, admin.Id)
	if request.Type != models.NotifWalletRequest {
		t.Fatalf("Expected wallet request, got %s", request.Type)
	}
	if request.Data.WalletName != "Travel" || request.Data.WalletType != "personal" || request.Data.Reason != "Saving for a trip" {
		t.Errorf("Payload mismatch: %+v", request.Data)
	}

	// Accepting has no account-side effect; the admin creates it out of
	// band.
	if err := service.Resolve(ctx, admin, request, true); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	accounts, err := platform.ListAccounts(ctx, member.Id)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Wallet request must not create accounts, got %d", len(accounts))
	}
}

func TestWalletRequest_FailsWithoutAdmin(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()

	member := &models.Profile{Id: "solo", Email: "solo@example.com", Name: "Solo"}
	if err := platform.EnsureProfile(ctx, *member); err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}

	if err := service.RequestWallet(ctx, member, "Travel", "personal", ""); err == nil {
		t.Error("Expected error when no admin exists")
	}
}

func TestFriendRequest_AcceptFlipsFriendship(t *testing.T) {
	platform := newTestPlatform(t)
	service := New(platform)
	ctx := context.Background()
	admin, member := seedProfiles(t, platform)

	if err := service.RequestFriend(ctx, member, admin.Id); err != nil {
		t.Fatalf("RequestFriend failed: %v", err)
	}

	invite := pendingRequest(t, platform, admin.Id)
	if invite.Type != models.NotifInvite || invite.Data.FriendshipId == "" {
		t.Fatalf("Unexpected invite: %+v", invite)
	}

	if err := service.Resolve(ctx, admin, invite, true); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	accepted, err := platform.ListFriendships(ctx, member.Id, models.RequestAccepted)
	if err != nil {
		t.Fatalf("ListFriendships failed: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("Expected 1 accepted friendship, got %d", len(accepted))
	}
}

func pendingIsResolved(t *testing.T, platform store.Platform, userId, notificationId string) *models.Notification {
	t.Helper()
	notifications, err := platform.ListNotifications(context.Background(), userId)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	for i := range notifications {
		if notifications[i].Id == notificationId {
			return &notifications[i]
		}
	}
	t.Fatalf("Notification %s not found", notificationId)
	return nil
}
