package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeForeignKeyViolation is raised when a referenced row is missing
	PgErrorCodeForeignKeyViolation = "23503"
	// PgErrorCodeDeadlockDetected is raised when PostgreSQL aborts a deadlocked transaction
	PgErrorCodeDeadlockDetected = "40P01"
)

// Advisory lock keys
const (
	// LockNamespaceRespawn prefixes the advisory lock key of a respawn
	LockNamespaceRespawn = "respawn"

	// HashSeparator joins the parts of an advisory lock key before hashing
	HashSeparator = ":"

	// HashMaskPositiveInt64 masks the MSB so advisory lock keys are positive int64 values
	HashMaskPositiveInt64 = 0x7FFFFFFFFFFFFFFF
)

// Constraint names used to map violations onto domain errors
const (
	ConstraintClaimsOneActive   = "uq_claims_one_active"
	ConstraintRespawnsCodeLive  = "uq_respawns_code_live"
	ConstraintQueueUserRespawn  = "queue_entries_user_id_respawn_id_key"
	ConstraintMembersUsername   = "members_username_key"
	ConstraintMembersPrimaryKey = "members_pkey"
	ConstraintCharactersName    = "characters_name_key"
)

// Error message formats
const (
	ErrMsgBeginTxFailed     = "failed to begin transaction: %w"
	ErrMsgCommitTxFailed    = "failed to commit transaction: %w"
	ErrMsgAcquireLockFailed = "failed to acquire respawn lock: %w"
	ErrMsgQueryFailed       = "failed to %s: %w"
)

// SQLAdvisoryLock acquires a PostgreSQL advisory transaction lock
const SQLAdvisoryLock = "SELECT pg_advisory_xact_lock($1)"

// Respawn queries
const (
	respawnColumns = `respawn_id, code, name, city, created_at`

	SQLGetRespawn = `SELECT ` + respawnColumns + ` FROM respawns WHERE respawn_id = $1 AND archived_at IS NULL`

	SQLListRespawns = `SELECT ` + respawnColumns + ` FROM respawns WHERE archived_at IS NULL ORDER BY code`

	SQLInsertRespawn = `
		INSERT INTO respawns (code, name, city)
		VALUES ($1, $2, $3)
		RETURNING ` + respawnColumns

	SQLHasActiveClaim = `SELECT EXISTS (SELECT 1 FROM claims WHERE respawn_id = $1 AND is_active)`

	SQLArchiveRespawn = `UPDATE respawns SET archived_at = NOW() WHERE respawn_id = $1 AND archived_at IS NULL`

	SQLDeleteRespawnQueue = `DELETE FROM queue_entries WHERE respawn_id = $1`

	SQLDeleteRespawnFavorites = `DELETE FROM favorites WHERE respawn_id = $1`
)

// Roster queries
const (
	memberColumns    = `user_id, username, role_tier, is_admin, created_at`
	characterColumns = `character_id, user_id, name, world, vocation, level, created_at`

	SQLGetMember = `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1`

	SQLGetMemberByUsername = `SELECT ` + memberColumns + ` FROM members WHERE lower(username) = lower($1)`

	SQLListMembers = `SELECT ` + memberColumns + ` FROM members ORDER BY username`

	SQLInsertMember = `
		INSERT INTO members (user_id, username, role_tier, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + memberColumns

	SQLUpdateMember = `UPDATE members SET username = $2, role_tier = $3, is_admin = $4 WHERE user_id = $1`

	SQLGetCharacter = `SELECT ` + characterColumns + ` FROM characters WHERE character_id = $1`

	SQLListCharacters = `SELECT ` + characterColumns + ` FROM characters WHERE user_id = $1 ORDER BY name`

	SQLInsertCharacter = `
		INSERT INTO characters (user_id, name, world, vocation, level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + characterColumns
)

// Settings queries
const (
	SQLGetSettings = `SELECT key, value FROM system_settings`

	SQLUpsertSetting = `
		INSERT INTO system_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
)

// Favorite queries
const (
	SQLInsertFavorite = `
		INSERT INTO favorites (user_id, respawn_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, respawn_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, respawn_id, created_at
	`

	SQLDeleteFavorite = `DELETE FROM favorites WHERE user_id = $1 AND respawn_id = $2`

	SQLListFavorites = `
		SELECT f.user_id, f.respawn_id, f.created_at
		FROM favorites f
		JOIN respawns r ON r.respawn_id = f.respawn_id AND r.archived_at IS NULL
		WHERE f.user_id = $1
		ORDER BY f.created_at
	`
)

// Claim queries
const (
	claimColumns = `claim_id, respawn_id, user_id, character_id, character_name, claimed_at,
		expires_at, is_active, released_at, COALESCE(end_reason, ''), expiring_notified_at`

	SQLGetActiveClaim = `SELECT ` + claimColumns + ` FROM claims WHERE respawn_id = $1 AND is_active`

	SQLGetClaim = `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = $1`

	SQLListActiveClaims = `SELECT ` + claimColumns + ` FROM claims WHERE is_active ORDER BY respawn_id`

	SQLListUserClaims = `SELECT ` + claimColumns + ` FROM claims WHERE user_id = $1 AND is_active ORDER BY claimed_at`

	SQLListOverdueClaims = `
		SELECT ` + claimColumns + ` FROM claims
		WHERE is_active AND expires_at <= $1
		ORDER BY expires_at`

	SQLListClaimsNearExpiry = `
		SELECT ` + claimColumns + ` FROM claims
		WHERE is_active AND expiring_notified_at IS NULL
		  AND expires_at > $1 AND expires_at <= $2
		ORDER BY expires_at`

	SQLInsertClaim = `
		INSERT INTO claims (respawn_id, user_id, character_id, character_name, claimed_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + claimColumns

	SQLDeactivateClaim = `
		UPDATE claims SET is_active = FALSE, released_at = $2, end_reason = $3
		WHERE claim_id = $1 AND is_active`

	SQLMarkExpiringNotified = `UPDATE claims SET expiring_notified_at = $2 WHERE claim_id = $1`
)

// Queue queries
const (
	queueColumns = `queue_entry_id, respawn_id, user_id, character_id, character_name, joined_at,
		priority_given_at, priority_expires_at`

	// Wait order: joined_at, then insertion sequence
	queueOrder = ` ORDER BY joined_at, queue_entry_id`

	SQLListQueue = `SELECT ` + queueColumns + ` FROM queue_entries WHERE respawn_id = $1` + queueOrder

	SQLListAllQueueEntries = `SELECT ` + queueColumns + ` FROM queue_entries ORDER BY respawn_id, joined_at, queue_entry_id`

	SQLListUserQueueEntries = `SELECT ` + queueColumns + ` FROM queue_entries WHERE user_id = $1` + queueOrder

	SQLListLapsedPriorities = `
		SELECT ` + queueColumns + ` FROM queue_entries
		WHERE priority_expires_at IS NOT NULL AND priority_expires_at <= $1` + queueOrder

	SQLListStalledRespawns = `
		SELECT DISTINCT q.respawn_id FROM queue_entries q
		WHERE NOT EXISTS (
			SELECT 1 FROM claims c
			WHERE c.respawn_id = q.respawn_id AND c.is_active AND c.expires_at > $1
		)
		AND NOT EXISTS (
			SELECT 1 FROM queue_entries p
			WHERE p.respawn_id = q.respawn_id AND p.priority_expires_at > $1
		)
		ORDER BY q.respawn_id`

	SQLInsertQueueEntry = `
		INSERT INTO queue_entries (respawn_id, user_id, character_id, character_name, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + queueColumns

	SQLDeleteQueueEntry = `DELETE FROM queue_entries WHERE queue_entry_id = $1`

	SQLGrantPriority = `
		UPDATE queue_entries SET priority_given_at = $2, priority_expires_at = $3
		WHERE queue_entry_id = $1`
)

// Notification queries
const (
	notificationColumns = `notification_id, user_id, title, message, type, respawn_id, is_read,
		read_at, created_at, expires_at`

	SQLInsertNotification = `
		INSERT INTO notifications (user_id, title, message, type, respawn_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + notificationColumns

	SQLListNotifications = `
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR created_at > $2)
		  AND (NOT $3 OR NOT is_read)
		ORDER BY created_at, notification_id
		LIMIT $4`

	SQLMarkNotificationRead = `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE user_id = $1 AND notification_id = $2`

	SQLMarkAllNotificationsRead = `
		UPDATE notifications SET is_read = TRUE, read_at = $2
		WHERE user_id = $1 AND NOT is_read`

	SQLCountUnreadNotifications = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`

	SQLPurgeNotifications = `
		DELETE FROM notifications
		WHERE (is_read AND COALESCE(read_at, created_at) < $1)
		   OR (expires_at IS NOT NULL AND expires_at < $2)`
)

// DefaultNotificationLimit caps notification listings when the caller gives no limit
const DefaultNotificationLimit = 100
