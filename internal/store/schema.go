package store

// Level-of-description term ids seeded into every database.
const (
	TermFonds      int64 = 191
	TermSubfonds   int64 = 192
	TermCollection int64 = 193
	TermSeries     int64 = 194
	TermSubseries  int64 = 195
	TermFile       int64 = 196
	TermItem       int64 = 197
)

const schema = `
CREATE TABLE IF NOT EXISTS term (
	id INTEGER PRIMARY KEY,
	taxonomy_id INTEGER NOT NULL,
	source_culture TEXT NOT NULL DEFAULT 'en'
);
CREATE TABLE IF NOT EXISTS term_i18n (
	id INTEGER NOT NULL REFERENCES term(id),
	culture TEXT NOT NULL,
	name TEXT,
	PRIMARY KEY (id, culture)
);
CREATE INDEX IF NOT EXISTS idx_term_i18n_name ON term_i18n(name, culture);

CREATE TABLE IF NOT EXISTS information_object (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES information_object(id),
	lft INTEGER NOT NULL,
	rgt INTEGER NOT NULL,
	level_of_description_id INTEGER REFERENCES term(id),
	identifier TEXT,
	slug TEXT UNIQUE,
	source_culture TEXT NOT NULL DEFAULT 'en'
);
CREATE INDEX IF NOT EXISTS idx_io_lft ON information_object(lft);
CREATE INDEX IF NOT EXISTS idx_io_rgt ON information_object(rgt);
CREATE INDEX IF NOT EXISTS idx_io_parent ON information_object(parent_id);

CREATE TABLE IF NOT EXISTS information_object_i18n (
	id INTEGER NOT NULL REFERENCES information_object(id),
	culture TEXT NOT NULL,
	title TEXT,
	access_conditions TEXT,
	PRIMARY KEY (id, culture)
);

CREATE TABLE IF NOT EXISTS event (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	object_id INTEGER NOT NULL REFERENCES information_object(id),
	type TEXT NOT NULL DEFAULT 'creation',
	start_date TEXT,
	end_date TEXT,
	source_culture TEXT NOT NULL DEFAULT 'en'
);
CREATE INDEX IF NOT EXISTS idx_event_object ON event(object_id);

CREATE TABLE IF NOT EXISTS event_i18n (
	id INTEGER NOT NULL REFERENCES event(id),
	culture TEXT NOT NULL,
	date TEXT,
	PRIMARY KEY (id, culture)
);

CREATE TABLE IF NOT EXISTS physical_object (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	label TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS relation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject_id INTEGER NOT NULL,
	object_id INTEGER NOT NULL,
	type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relation_object ON relation(object_id, type);

CREATE TABLE IF NOT EXISTS digital_object (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	object_id INTEGER NOT NULL REFERENCES information_object(id),
	usage TEXT NOT NULL,
	path TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_digital_object_object ON digital_object(object_id, usage);

CREATE TABLE IF NOT EXISTS job (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	object_id INTEGER,
	status TEXT NOT NULL,
	params TEXT,
	output TEXT,
	message TEXT,
	created_at DATETIME NOT NULL,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_job_created ON job(created_at);
`

// seed installs the level-of-description taxonomy and the synthetic tree root.
const seed = `
INSERT OR IGNORE INTO term (id, taxonomy_id) VALUES
	(191, 34), (192, 34), (193, 34), (194, 34), (195, 34), (196, 34), (197, 34);
INSERT OR IGNORE INTO term_i18n (id, culture, name) VALUES
	(191, 'en', 'Fonds'), (191, 'fr', 'Fonds'),
	(192, 'en', 'Subfonds'), (192, 'fr', 'Sous-fonds'),
	(193, 'en', 'Collection'), (193, 'fr', 'Collection'),
	(194, 'en', 'Series'), (194, 'fr', 'Série organique'),
	(195, 'en', 'Subseries'), (195, 'fr', 'Sous-série organique'),
	(196, 'en', 'File'), (196, 'fr', 'Dossier'),
	(197, 'en', 'Item'), (197, 'fr', 'Pièce');
INSERT OR IGNORE INTO information_object (id, parent_id, lft, rgt, slug)
	VALUES (1, NULL, 1, 2, 'root');
`
