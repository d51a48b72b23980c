package postgres

// SQL queries for the squadgoals stores.

const (
	// queryUpsertEntry enforces the one-entry-per-(user,squad,goal,boundary)
	// invariant in a single statement, so concurrent resubmission for the
	// same boundary collapses into one row instead of racing read-then-write.
	queryUpsertEntry = `
		INSERT INTO goal_entries (user_id, squad_id, goal_id, boundary_value, value, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, squad_id, goal_id, boundary_value)
		DO UPDATE SET value = EXCLUDED.value, note = EXCLUDED.note
		RETURNING id
	`

	queryEntriesForBoundary = `
		SELECT id, user_id, squad_id, goal_id, boundary_value, value, note
		FROM goal_entries
		WHERE user_id = $1 AND squad_id = $2 AND boundary_value = $3
		ORDER BY id ASC
	`

	queryEntriesForBoundaryAndGoal = `
		SELECT id, user_id, squad_id, goal_id, boundary_value, value, note
		FROM goal_entries
		WHERE user_id = $1 AND squad_id = $2 AND boundary_value = $3 AND goal_id = $4
		ORDER BY id ASC
	`

	queryEntriesForUser = `
		SELECT e.id, e.user_id, e.squad_id, e.goal_id, e.boundary_value, e.value, e.note
		FROM goal_entries e
		JOIN goals g ON g.id = e.goal_id
		WHERE e.user_id = $1 AND e.squad_id = $2
		ORDER BY e.id ASC
	`

	queryEntriesForUserInGroup = `
		SELECT e.id, e.user_id, e.squad_id, e.goal_id, e.boundary_value, e.value, e.note
		FROM goal_entries e
		JOIN goals g ON g.id = e.goal_id
		WHERE e.user_id = $1 AND e.squad_id = $2 AND g.group_id = $3
		ORDER BY e.id ASC
	`

	// querySquadEntriesBetween powers the squad day view. Counter-partition
	// groups are excluded: a BETWEEN over date strings is meaningless for
	// integer keys.
	querySquadEntriesBetween = `
		SELECT e.id, e.user_id, e.squad_id, e.goal_id, e.boundary_value, e.value, e.note
		FROM goal_entries e
		JOIN goals g ON g.id = e.goal_id
		JOIN goal_groups gg ON gg.id = g.group_id
		WHERE e.squad_id = $1
		  AND e.boundary_value BETWEEN $2 AND $3
		  AND gg.partition_type = ANY($4)
		ORDER BY e.user_id ASC, e.boundary_value ASC, e.id ASC
	`

	queryGroupsForSquad = `
		SELECT id, squad_id, group_name, partition_type, partition_label,
		       start_value, end_value, start_date, end_date
		FROM goal_groups
		WHERE squad_id = $1
		ORDER BY group_name ASC
	`

	queryGetGroup = `
		SELECT id, squad_id, group_name, partition_type, partition_label,
		       start_value, end_value, start_date, end_date
		FROM goal_groups
		WHERE squad_id = $1 AND id = $2
	`

	querySaveGroup = `
		INSERT INTO goal_groups (
			id, squad_id, group_name, partition_type, partition_label,
			start_value, end_value, start_date, end_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			group_name = EXCLUDED.group_name,
			partition_type = EXCLUDED.partition_type,
			partition_label = EXCLUDED.partition_label,
			start_value = EXCLUDED.start_value,
			end_value = EXCLUDED.end_value,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date
	`

	// Goals and entries hang off the group via ON DELETE CASCADE.
	queryDeleteGroup = `DELETE FROM goal_groups WHERE squad_id = $1 AND id = $2`

	queryGoalsForSquad = `
		SELECT id, squad_id, group_id, name, type, target, target_max, is_private, is_active
		FROM goals
		WHERE squad_id = $1
		ORDER BY name ASC
	`

	queryGetGoal = `
		SELECT id, squad_id, group_id, name, type, target, target_max, is_private, is_active
		FROM goals
		WHERE squad_id = $1 AND id = $2
	`

	querySaveGoal = `
		INSERT INTO goals (id, squad_id, group_id, name, type, target, target_max, is_private, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			target = EXCLUDED.target,
			target_max = EXCLUDED.target_max,
			is_private = EXCLUDED.is_private,
			is_active = EXCLUDED.is_active
	`

	queryDeleteGoal = `DELETE FROM goals WHERE squad_id = $1 AND id = $2`

	queryGetUser           = `SELECT id, username FROM users WHERE id = $1`
	queryGetUserByUsername = `SELECT id, username FROM users WHERE username = $1`

	queryCreateSquad    = `INSERT INTO squads (id, name, admin_id) VALUES ($1, $2, $3)`
	queryGetSquad       = `SELECT id, name, admin_id FROM squads WHERE id = $1`
	queryGetSquadByName = `SELECT id, name, admin_id FROM squads WHERE name = $1`
	queryDeleteSquad    = `DELETE FROM squads WHERE id = $1`

	querySquadsForUser = `
		SELECT s.id, s.name, s.admin_id, u.username,
		       (SELECT COUNT(*) FROM squad_members mc WHERE mc.squad_id = s.id) AS member_count
		FROM squads s
		JOIN squad_members m ON m.squad_id = s.id
		JOIN users u ON u.id = s.admin_id
		WHERE m.user_id = $1
		ORDER BY s.name ASC
	`

	queryMembersOf = `
		SELECT u.id, u.username
		FROM users u
		JOIN squad_members m ON m.user_id = u.id
		WHERE m.squad_id = $1
		ORDER BY u.username ASC
	`

	queryIsMember     = `SELECT EXISTS (SELECT 1 FROM squad_members WHERE squad_id = $1 AND user_id = $2)`
	queryAddMember    = `INSERT INTO squad_members (squad_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	queryRemoveMember = `DELETE FROM squad_members WHERE squad_id = $1 AND user_id = $2`

	queryCreateInvite = `
		INSERT INTO squad_invites (id, squad_id, invited_user_id, status)
		VALUES ($1, $2, $3, $4)
	`

	queryGetInvite = `
		SELECT i.id, i.squad_id, s.name, i.invited_user_id, iu.username, au.username, i.status
		FROM squad_invites i
		JOIN squads s ON s.id = i.squad_id
		JOIN users iu ON iu.id = i.invited_user_id
		JOIN users au ON au.id = s.admin_id
		WHERE i.id = $1
	`

	queryPendingInviteFor = `
		SELECT i.id, i.squad_id, s.name, i.invited_user_id, iu.username, au.username, i.status
		FROM squad_invites i
		JOIN squads s ON s.id = i.squad_id
		JOIN users iu ON iu.id = i.invited_user_id
		JOIN users au ON au.id = s.admin_id
		WHERE i.squad_id = $1 AND i.invited_user_id = $2 AND i.status = 'pending'
	`

	queryInvitesForUser = `
		SELECT i.id, i.squad_id, s.name, i.invited_user_id, iu.username, au.username, i.status
		FROM squad_invites i
		JOIN squads s ON s.id = i.squad_id
		JOIN users iu ON iu.id = i.invited_user_id
		JOIN users au ON au.id = s.admin_id
		WHERE i.invited_user_id = $1 AND i.status = 'pending'
		ORDER BY i.id ASC
	`

	queryInvitesForSquad = `
		SELECT i.id, i.squad_id, s.name, i.invited_user_id, iu.username, au.username, i.status
		FROM squad_invites i
		JOIN squads s ON s.id = i.squad_id
		JOIN users iu ON iu.id = i.invited_user_id
		JOIN users au ON au.id = s.admin_id
		WHERE i.squad_id = $1 AND i.status = 'pending'
		ORDER BY i.id ASC
	`

	querySetInviteStatus      = `UPDATE squad_invites SET status = $2 WHERE id = $1`
	queryDeleteInvite         = `DELETE FROM squad_invites WHERE id = $1`
	queryDeletePendingInvites = `DELETE FROM squad_invites WHERE squad_id = $1 AND invited_user_id = $2 AND status = 'pending'`
	queryPurgeResolvedInvites = `DELETE FROM squad_invites WHERE status IN ('accepted', 'declined')`

	queryGetProfile = `
		SELECT name, gender, age, height_cm, weight_kg, goal_weight_kg
		FROM profiles
		WHERE user_id = $1
	`

	querySaveProfile = `
		INSERT INTO profiles (user_id, name, gender, age, height_cm, weight_kg, goal_weight_kg)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			gender = EXCLUDED.gender,
			age = EXCLUDED.age,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			goal_weight_kg = EXCLUDED.goal_weight_kg
	`
)
