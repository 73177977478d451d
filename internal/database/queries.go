package database

const (
	// Identity and session queries
	queryInsertIdentity = `
		INSERT INTO identities (id, email, password_hash, metadata) VALUES (?, ?, ?, ?)`

	queryGetIdentityByEmail = `
		SELECT id, email, password_hash, metadata
		FROM identities
		WHERE email = ?`

	queryGetIdentityBySession = `
		SELECT i.id, i.email, i.password_hash, i.metadata
		FROM sessions s
		JOIN identities i ON i.id = s.identity_id
		WHERE s.token = ?`

	queryInsertSession = `
		INSERT INTO sessions (token, identity_id) VALUES (?, ?)`

	queryDeleteSession = `
		DELETE FROM sessions WHERE token = ?`

	// Profile queries
	queryGetProfile = `
		SELECT id, email, name, avatar, role, bio, is_suspended, created_at
		FROM profiles
		WHERE id = ?`

	queryGetProfileByEmail = `
		SELECT id, email, name, avatar, role, bio, is_suspended, created_at
		FROM profiles
		WHERE email = ?`

	// INSERT OR IGNORE keeps the lazy profile creation idempotent under
	// concurrent refreshes.
	queryEnsureProfile = `
		INSERT OR IGNORE INTO profiles (id, email, name, avatar, role, bio, is_suspended)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryUpdateProfile = `
		UPDATE profiles SET name = ?, bio = ?, avatar = ?, role = ?, is_suspended = ? WHERE id = ?`

	queryListProfiles = `
		SELECT id, email, name, avatar, role, bio, is_suspended, created_at
		FROM profiles
		ORDER BY created_at DESC`

	queryFirstAdmin = `
		SELECT id, email, name, avatar, role, bio, is_suspended, created_at
		FROM profiles
		WHERE role = 'admin'
		ORDER BY created_at
		LIMIT 1`

	// Account queries
	queryListAccountsByOwner = `
		SELECT a.id, a.user_id, a.name, a.balance, a.is_suspended, a.created_at,
		       p.id, p.email, p.name, p.avatar, p.role, p.bio, p.is_suspended, p.created_at
		FROM accounts a
		LEFT JOIN profiles p ON p.id = a.user_id
		WHERE a.user_id = ?
		ORDER BY a.created_at`

	queryListAllAccounts = `
		SELECT a.id, a.user_id, a.name, a.balance, a.is_suspended, a.created_at,
		       p.id, p.email, p.name, p.avatar, p.role, p.bio, p.is_suspended, p.created_at
		FROM accounts a
		LEFT JOIN profiles p ON p.id = a.user_id
		ORDER BY a.created_at`

	queryInsertAccount = `
		INSERT INTO accounts (id, user_id, name, balance) VALUES (?, ?, ?, '0')`

	queryRenameAccount = `
		UPDATE accounts SET name = ? WHERE id = ?`

	querySetAccountSuspended = `
		UPDATE accounts SET is_suspended = ? WHERE id = ?`

	queryDeleteAccount = `
		DELETE FROM accounts WHERE id = ?`

	queryGetAccountBalance = `
		SELECT balance FROM accounts WHERE id = ?`

	queryUpdateAccountBalance = `
		UPDATE accounts SET balance = ? WHERE id = ?`

	// Group account queries
	queryListGroupAccounts = `
		SELECT id, user_id, name, balance, is_suspended, members, pending_members, leaving_members, created_at
		FROM group_accounts
		ORDER BY created_at`

	queryGetGroupAccount = `
		SELECT id, user_id, name, balance, is_suspended, members, pending_members, leaving_members, created_at
		FROM group_accounts
		WHERE id = ?`

	queryInsertGroupAccount = `
		INSERT INTO group_accounts (id, user_id, name, balance, members) VALUES (?, ?, ?, '0', ?)`

	queryUpdateGroupMembers = `
		UPDATE group_accounts SET members = ?, pending_members = ?, leaving_members = ? WHERE id = ?`

	querySetGroupSuspended = `
		UPDATE group_accounts SET is_suspended = ? WHERE id = ?`

	queryGetGroupBalance = `
		SELECT balance FROM group_accounts WHERE id = ?`

	queryUpdateGroupBalance = `
		UPDATE group_accounts SET balance = ? WHERE id = ?`

	// Category queries
	queryListCategories = `
		SELECT id, name, type, color, icon, is_default
		FROM categories
		ORDER BY name`

	queryInsertCategory = `
		INSERT INTO categories (id, name, type, color, icon, is_default) VALUES (?, ?, ?, ?, ?, ?)`

	queryUpdateCategory = `
		UPDATE categories SET name = ?, type = ?, color = ?, icon = ?, is_default = ? WHERE id = ?`

	queryDeleteCategory = `
		DELETE FROM categories WHERE id = ?`

	// Notification queries
	queryListNotifications = `
		SELECT id, user_id, title, message, type, status, is_read, data, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC`

	queryInsertNotification = `
		INSERT INTO notifications (id, user_id, title, message, type, status, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryResolveNotification = `
		UPDATE notifications SET status = ?, is_read = 1 WHERE id = ?`

	queryMarkNotificationRead = `
		UPDATE notifications SET is_read = 1 WHERE id = ?`

	queryMarkAllNotificationsRead = `
		UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`

	// Friendship queries
	queryInsertFriendship = `
		INSERT INTO friendships (id, requester_id, receiver_id, status) VALUES (?, ?, ?, 'pending')`

	queryAcceptFriendship = `
		UPDATE friendships SET status = 'accepted' WHERE id = ?`

	queryListFriendships = `
		SELECT id, requester_id, receiver_id, status, created_at
		FROM friendships
		WHERE (requester_id = ? OR receiver_id = ?) AND status = ?
		ORDER BY created_at`

	// Message queries
	queryInsertMessage = `
		INSERT INTO messages (id, sender_id, receiver_id, content, created_at) VALUES (?, ?, ?, ?, ?)`

	queryListMessagesBetween = `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at DESC
		LIMIT ?`
)

// transactionQueries builds the per-collection SQL for the two disjoint
// transaction tables. Only the table name differs.
func transactionQueries(shared bool) (list, insert, getStatus, setStatus string) {
	table := "transactions"
	if shared {
		table = "group_transactions"
	}
	list = `
		SELECT t.id, t.account_id, t.amount, t.type, t.category_id, t.date, t.note, t.created_by, t.status, t.created_at,
		       c.id, c.name, c.type, c.color, c.icon, c.is_default,
		       p.id, p.email, p.name, p.avatar, p.role, p.bio, p.is_suspended, p.created_at
		FROM ` + table + ` t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN profiles p ON p.id = t.created_by
		ORDER BY t.date DESC
		LIMIT ?`
	insert = `
		INSERT INTO ` + table + ` (id, account_id, amount, type, category_id, date, note, created_by, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending')`
	getStatus = `
		SELECT account_id, amount, type, status FROM ` + table + ` WHERE id = ?`
	setStatus = `
		UPDATE ` + table + ` SET status = ? WHERE id = ?`
	return list, insert, getStatus, setStatus
}
