package repos

import (
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Demo accounts and jobs (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedJobs(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('customer','craftsman','admin')),
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  street TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  company_name TEXT NOT NULL DEFAULT '',
  bio TEXT NOT NULL DEFAULT '',
  categories_json TEXT NOT NULL DEFAULT '[]',
  experience_years INTEGER NOT NULL DEFAULT 0,
  profile_completed INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Jobs
CREATE TABLE IF NOT EXISTS jobs(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  category TEXT NOT NULL,
  street TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  budget_min NUMERIC NOT NULL DEFAULT 0 CHECK (budget_min >= 0),
  budget_max NUMERIC NOT NULL DEFAULT 0 CHECK (budget_max >= 0),
  urgency TEXT NOT NULL CHECK (urgency IN ('low','medium','high','urgent')),
  status TEXT NOT NULL DEFAULT 'open'
    CHECK (status IN ('open','in_progress','completed','cancelled')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_jobs_customer   ON jobs(customer_id);
CREATE INDEX IF NOT EXISTS idx_jobs_status     ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_category   ON jobs(category);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);

-- Applications: one bid per (job, craftsman)
CREATE TABLE IF NOT EXISTS job_applications(
  id TEXT PRIMARY KEY,
  job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  craftsman_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  message TEXT NOT NULL,
  price NUMERIC NULL,
  estimated_duration INTEGER NULL,
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','accepted','rejected','withdrawn','completed')),
  scheduled_date TEXT NULL,
  scheduled_time TEXT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT '',
  UNIQUE(job_id, craftsman_id)
);
CREATE INDEX IF NOT EXISTS idx_applications_job       ON job_applications(job_id);
CREATE INDEX IF NOT EXISTS idx_applications_craftsman ON job_applications(craftsman_id);
CREATE INDEX IF NOT EXISTS idx_applications_status    ON job_applications(status);

-- Messages: created_at carries nanosecond precision, id breaks ties
CREATE TABLE IF NOT EXISTS messages(
  id TEXT PRIMARY KEY,
  job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  sender_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  receiver_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  created_at TEXT NOT NULL,
  read_at TEXT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_job      ON messages(job_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, read_at);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures demo accounts exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Role, First, Last, City, Company, Categories, Hash string
	}
	mk := func(id, email, role, first, last, city, company, categories, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		if categories == "" {
			categories = "[]"
		}
		return u{ID: id, Email: email, Role: role, First: first, Last: last,
			City: city, Company: company, Categories: categories, Hash: string(h)}
	}

	users := []u{
		mk("u-claudia", "claudia@craftconnect.test", "customer", "Claudia", "Krause", "Berlin", "", "", "Passw0rd!"),
		mk("u-martin", "martin@craftconnect.test", "customer", "Martin", "Weber", "Hamburg", "", "", "Passw0rd!"),
		mk("u-hans", "hans@craftconnect.test", "craftsman", "Hans", "Becker", "Berlin",
			"Becker Sanitär GmbH", `["Sanitär","Heizung"]`, "Passw0rd!"),
		mk("u-erika", "erika@craftconnect.test", "craftsman", "Erika", "Schmidt", "Berlin",
			"Schmidt Elektrotechnik", `["Elektro"]`, "Passw0rd!"),
		mk("u-admin", "admin@craftconnect.test", "admin", "Admin", "", "", "", "", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,password_hash,role,first_name,last_name,city,company_name,categories_json,profile_completed)
			VALUES(?,?,?,?,?,?,?,?,?,1)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Hash, x.Role, x.First, x.Last, x.City, x.Company, x.Categories); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedJobs inserts a pair of demo jobs if absent (idempotent).
func seedJobs(db *sqlx.DB) error {
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	_, _ = tx.Exec(`
		INSERT INTO jobs(id, customer_id, title, description, category, street, postal_code, city,
		                 budget_min, budget_max, urgency, status)
		SELECT 'job-bad-001', 'u-claudia',
		       'Badezimmer sanieren',
		       'Komplette Sanierung eines Badezimmers, ca. 8qm. Fliesen und Sanitärobjekte vorhanden.',
		       'Sanitär', 'Hauptstraße 12', '10115', 'Berlin', 3000, 6000, 'medium', 'open'
		WHERE NOT EXISTS (SELECT 1 FROM jobs WHERE id='job-bad-001')
	`)
	_, _ = tx.Exec(`
		INSERT INTO jobs(id, customer_id, title, description, category, street, postal_code, city,
		                 budget_min, budget_max, urgency, status)
		SELECT 'job-elektro-001', 'u-martin',
		       'Sicherungskasten erneuern',
		       'Alter Sicherungskasten soll gegen einen modernen Verteiler getauscht werden.',
		       'Elektro', 'Elbchaussee 5', '22763', 'Hamburg', 800, 1500, 'high', 'open'
		WHERE NOT EXISTS (SELECT 1 FROM jobs WHERE id='job-elektro-001')
	`)

	return tx.Commit()
}
