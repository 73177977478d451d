// Package workflow implements the notification-backed request state
// machine: join/leave requests against group accounts, wallet requests to
// an administrator and friend requests for chat. Requests move from
// pending to a terminal accepted/rejected state; re-requesting after
// rejection creates a new independent record.
package workflow

import (
	"context"
	"fmt"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"
	"family-fund-go/internal/visibility"

	"go.uber.org/zap"
)

// Service executes workflow transitions through the platform contract.
// Callers refresh their session store afterward; nothing here mutates
// client state.
type Service struct {
	platform store.Platform
}

func New(platform store.Platform) *Service {
	return &Service{platform: platform}
}

// RequestJoin records the requester in the fund's pending set and
// notifies the fund's creator.
func (s *Service) RequestJoin(ctx context.Context, requester *models.Profile, groupId string) error {
	group, err := s.platform.GetGroupAccount(ctx, groupId)
	if err != nil {
		return fmt.Errorf("load group: %w", err)
	}
	if group.HasMember(requester.Id) {
		return fmt.Errorf("profile %s is already a member of %s", requester.Id, group.Name)
	}

	sets := memberSets(group)
	sets.PendingMembers = appendUnique(sets.PendingMembers, requester.Id)
	if err := s.platform.UpdateGroupMembers(ctx, groupId, sets); err != nil {
		return fmt.Errorf("update group members: %w", err)
	}

	_, err = s.platform.CreateNotification(ctx, store.CreateNotificationParams{
		UserId:  group.UserId,
		Title:   "Join Request",
		Message: fmt.Sprintf("%s requested to join %s", requester.Name, group.Name),
		Type:    models.NotifJoinRequest,
		Status:  models.RequestPending,
		Data:    models.NotificationData{GroupId: groupId, RequesterId: requester.Id},
	})
	if err != nil {
		return fmt.Errorf("create join notification: %w", err)
	}

	zap.L().Info("Join requested", zap.String("group_id", groupId), zap.String("requester_id", requester.Id))
	return nil
}

// RequestLeave records the requester in the fund's leaving set and
// notifies the fund's creator.
func (s *Service) RequestLeave(ctx context.Context, requester *models.Profile, groupId string) error {
	group, err := s.platform.GetGroupAccount(ctx, groupId)
	if err != nil {
		return fmt.Errorf("load group: %w", err)
	}
	if !group.HasMember(requester.Id) {
		return fmt.Errorf("profile %s is not a member of %s", requester.Id, group.Name)
	}

	sets := memberSets(group)
	// The three sets stay pairwise disjoint, so a departing member is
	// parked in LeavingMembers and restored to Members on rejection.
	sets.Members = removeId(sets.Members, requester.Id)
	sets.LeavingMembers = appendUnique(sets.LeavingMembers, requester.Id)
	if err := s.platform.UpdateGroupMembers(ctx, groupId, sets); err != nil {
		return fmt.Errorf("update group members: %w", err)
	}

	_, err = s.platform.CreateNotification(ctx, store.CreateNotificationParams{
		UserId:  group.UserId,
		Title:   "Leave Request",
		Message: fmt.Sprintf("%s wants to leave %s", requester.Name, group.Name),
		Type:    models.NotifLeaveRequest,
		Status:  models.RequestPending,
		Data:    models.NotificationData{GroupId: groupId, RequesterId: requester.Id},
	})
	if err != nil {
		return fmt.Errorf("create leave notification: %w", err)
	}

	zap.L().Info("Leave requested", zap.String("group_id", groupId), zap.String("requester_id", requester.Id))
	return nil
}

// RequestWallet routes a purely informational notification to the first
// administrator; no account is created on acceptance, the admin acts out
// of band.
func (s *Service) RequestWallet(ctx context.Context, requester *models.Profile, name, walletType, reason string) error {
	admin, err := s.platform.FirstAdmin(ctx)
	if err != nil {
		return fmt.Errorf("no administrator found to process the request: %w", err)
	}

	_, err = s.platform.CreateNotification(ctx, store.CreateNotificationParams{
		UserId:  admin.Id,
		Title:   "Wallet Request",
		Message: fmt.Sprintf("%s has requested a new %s wallet named %q.", requester.Name, walletType, name),
		Type:    models.NotifWalletRequest,
		Status:  models.RequestPending,
		Data: models.NotificationData{
			RequesterId: requester.Id,
			WalletName:  name,
			WalletType:  walletType,
			Reason:      reason,
		},
	})
	if err != nil {
		return fmt.Errorf("create wallet notification: %w", err)
	}

	zap.L().Info("Wallet requested", zap.String("requester_id", requester.Id), zap.String("admin_id", admin.Id))
	return nil
}

// RequestFriend creates a pending friendship plus an invite notification
// to the receiver.
func (s *Service) RequestFriend(ctx context.Context, requester *models.Profile, receiverId string) error {
	friendship, err := s.platform.CreateFriendship(ctx, requester.Id, receiverId)
	if err != nil {
		return fmt.Errorf("create friendship: %w", err)
	}

	_, err = s.platform.CreateNotification(ctx, store.CreateNotificationParams{
		UserId:  receiverId,
		Title:   "Friend Request",
		Message: fmt.Sprintf("%s wants to connect with you", requester.Name),
		Type:    models.NotifInvite,
		Status:  models.RequestPending,
		Data:    models.NotificationData{RequesterId: requester.Id, FriendshipId: friendship.Id},
	})
	if err != nil {
		return fmt.Errorf("create invite notification: %w", err)
	}
	return nil
}

// Resolve finalizes a pending request notification. Only the recipient
// may resolve it, and the group-side effects of join/leave requests
// additionally require admin capability. The notification always ends up
// read, with a terminal status.
func (s *Service) Resolve(ctx context.Context, reviewer *models.Profile, notification *models.Notification, accept bool) error {
	if reviewer == nil || notification.UserId != reviewer.Id {
		return store.ErrNotAuthorized
	}
	if notification.Status != models.RequestPending {
		return fmt.Errorf("request %s already resolved as %s", notification.Id, notification.Status)
	}

	switch notification.Type {
	case models.NotifJoinRequest, models.NotifLeaveRequest:
		if !visibility.CapabilitiesFor(reviewer).ApproveTransactions {
			return store.ErrNotAuthorized
		}
		if err := s.applyGroupTransition(ctx, notification, accept); err != nil {
			return err
		}
	case models.NotifInvite:
		if accept && notification.Data.FriendshipId != "" {
			if err := s.platform.AcceptFriendship(ctx, notification.Data.FriendshipId); err != nil {
				return fmt.Errorf("accept friendship: %w", err)
			}
		}
	case models.NotifWalletRequest:
		// No side effect: the admin creates the wallet out of band.
	default:
		return fmt.Errorf("notification %s is not an actionable request", notification.Id)
	}

	status := models.RequestRejected
	if accept {
		status = models.RequestAccepted
	}
	if err := s.platform.ResolveNotification(ctx, notification.Id, status); err != nil {
		return fmt.Errorf("resolve notification: %w", err)
	}

	zap.L().Info("Resolved request",
		zap.String("notification_id", notification.Id),
		zap.String("type", string(notification.Type)),
		zap.Bool("accepted", accept))
	return nil
}

// applyGroupTransition re-reads the group and moves the requester between
// member sets. The sets stay pairwise disjoint through every outcome.
func (s *Service) applyGroupTransition(ctx context.Context, notification *models.Notification, accept bool) error {
	groupId := notification.Data.GroupId
	requesterId := notification.Data.RequesterId
	if groupId == "" || requesterId == "" {
		return fmt.Errorf("notification %s has no group transition payload", notification.Id)
	}

	group, err := s.platform.GetGroupAccount(ctx, groupId)
	if err != nil {
		return fmt.Errorf("load group: %w", err)
	}

	sets := memberSets(group)
	switch notification.Type {
	case models.NotifJoinRequest:
		sets.PendingMembers = removeId(sets.PendingMembers, requesterId)
		if accept {
			sets.Members = appendUnique(sets.Members, requesterId)
		}
	case models.NotifLeaveRequest:
		sets.LeavingMembers = removeId(sets.LeavingMembers, requesterId)
		if accept {
			sets.Members = removeId(sets.Members, requesterId)
		} else {
			// Declined: the requester stays a full member.
			sets.Members = appendUnique(sets.Members, requesterId)
		}
	}

	if err := s.platform.UpdateGroupMembers(ctx, groupId, sets); err != nil {
		return fmt.Errorf("update group members: %w", err)
	}
	return nil
}

// MarkRead marks a single informational notification read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.platform.MarkNotificationRead(ctx, id)
}

// MarkAllRead marks every unread notification of the recipient read.
func (s *Service) MarkAllRead(ctx context.Context, userId string) error {
	return s.platform.MarkAllNotificationsRead(ctx, userId)
}

func memberSets(group *models.GroupAccount) store.MemberSets {
	return store.MemberSets{
		Members:        append([]string(nil), group.Members...),
		PendingMembers: append([]string(nil), group.PendingMembers...),
		LeavingMembers: append([]string(nil), group.LeavingMembers...),
	}
}

func appendUnique(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeId(ids []string, id string) []string {
	var out []string
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
