package database

import (
	"context"
	"errors"
	"testing"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"
)

func TestCreateGroupAccount_CreatorIsImplicitMember(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	group, err := service.CreateGroupAccount(ctx, "admin1", "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}

	got, err := service.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	if !got.HasMember("admin1") {
		t.Errorf("Expected creator in members, got %v", got.Members)
	}
	if len(got.PendingMembers) != 0 || len(got.LeavingMembers) != 0 {
		t.Errorf("Expected empty pending/leaving sets, got %v / %v", got.PendingMembers, got.LeavingMembers)
	}
}

func TestUpdateGroupMembers_RoundTrip(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	group, err := service.CreateGroupAccount(ctx, "admin1", "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}

	sets := store.MemberSets{
		Members:        []string{"admin1", "member2"},
		PendingMembers: []string{"member3"},
		LeavingMembers: []string{"member4"},
	}
	if err := service.UpdateGroupMembers(ctx, group.Id, sets); err != nil {
		t.Fatalf("UpdateGroupMembers failed: %v", err)
	}

	got, err := service.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	if len(got.Members) != 2 || len(got.PendingMembers) != 1 || len(got.LeavingMembers) != 1 {
		t.Errorf("Member sets did not round-trip: %+v", got)
	}
	if got.PendingMembers[0] != "member3" {
		t.Errorf("Expected member3 pending, got %v", got.PendingMembers)
	}
}

func TestUpdateGroupMembers_RejectsOverlap(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	group, err := service.CreateGroupAccount(ctx, "admin1", "Family Fund")
	if err != nil {
		t.Fatalf("CreateGroupAccount failed: %v", err)
	}

	err = service.UpdateGroupMembers(ctx, group.Id, store.MemberSets{
		Members:        []string{"admin1", "member2"},
		PendingMembers: []string{"member2"},
	})
	var overlap *models.MemberSetOverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("Expected MemberSetOverlapError, got %v", err)
	}
	if overlap.ProfileId != "member2" {
		t.Errorf("Expected overlap on member2, got %s", overlap.ProfileId)
	}

	// The write must not have gone through.
	got, err := service.GetGroupAccount(ctx, group.Id)
	if err != nil {
		t.Fatalf("GetGroupAccount failed: %v", err)
	}
	if len(got.PendingMembers) != 0 {
		t.Errorf("Overlapping write persisted: %v", got.PendingMembers)
	}
}

func TestGetGroupAccount_NotFound(t *testing.T) {
	service := setupTestDb(t)

	_, err := service.GetGroupAccount(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
