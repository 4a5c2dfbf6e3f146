package db

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				registration_date DATETIME NOT NULL,
				role TEXT NOT NULL DEFAULT 'user'
			)
		`,
	},
	{
		name: "create boards table",
		sql: `
			CREATE TABLE IF NOT EXISTS boards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				description TEXT DEFAULT ''
			)
		`,
	},
	{
		name: "create messages table",
		sql: `
			CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				board_id INTEGER NOT NULL REFERENCES boards(id) ON DELETE RESTRICT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
				body TEXT NOT NULL,
				timestamp DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_messages_board ON messages(board_id, timestamp);
		`,
	},
	{
		name: "create private messages table",
		sql: `
			CREATE TABLE IF NOT EXISTS private_messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
				recipient_id INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
				subject TEXT NOT NULL,
				body TEXT NOT NULL DEFAULT '',
				timestamp DATETIME NOT NULL,
				is_read INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_private_messages_recipient ON private_messages(recipient_id, timestamp);
		`,
	},
	{
		name: "create file areas table",
		sql: `
			CREATE TABLE IF NOT EXISTS file_areas (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				description TEXT DEFAULT ''
			)
		`,
	},
	{
		name: "create file listings table",
		sql: `
			CREATE TABLE IF NOT EXISTS file_listings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				area_id INTEGER NOT NULL REFERENCES file_areas(id) ON DELETE RESTRICT,
				filename TEXT NOT NULL,
				description TEXT DEFAULT '',
				uploader_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
				upload_date DATETIME NOT NULL,
				download_count INTEGER NOT NULL DEFAULT 0,
				UNIQUE(area_id, filename)
			)
		`,
	},
	{
		name: "create user preferences table",
		sql: `
			CREATE TABLE IF NOT EXISTS user_preferences (
				user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
				color_prompt TEXT,
				color_username_output TEXT,
				color_timestamp_output TEXT
			)
		`,
	},
	{
		name: "create bbs settings table",
		sql: `
			CREATE TABLE IF NOT EXISTS bbs_settings (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				name TEXT NOT NULL,
				sysop TEXT NOT NULL,
				tagline TEXT NOT NULL DEFAULT ''
			)
		`,
	},
	{
		name: "seed bbs settings",
		sql: `
			INSERT OR IGNORE INTO bbs_settings (id, name, sysop, tagline) VALUES (1, 'Dusk BBS', 'Sysop', 'Where the lines stay open late');
		`,
	},
}

// seedSQL re-applies the idempotent seed rows at every start so a deleted
// default board or area comes back.
const seedSQL = `
	INSERT OR IGNORE INTO boards (name, description) VALUES ('General', 'General discussion');
	INSERT OR IGNORE INTO file_areas (name, description) VALUES ('General Files', 'Miscellaneous files');
`
