// Package sqlite implements the SQLite snapshot store: schema creation and the
// transactional upsert writer.
package sqlite

// Schema DDL for all tables. Every statement is guarded with IF NOT EXISTS so
// the schema can be ensured on each run.
//
// War_Participants, Battles and CountryMetrics carry save_id so their country
// references can target the composite Countries key; SQLite rejects foreign
// keys whose parent columns are not a primary key or unique index.
const (
	createSaves = `CREATE TABLE IF NOT EXISTS Saves (
    save_id TEXT PRIMARY KEY,
    filename TEXT,
    saved_at TEXT,
    in_game_date TEXT
);`

	createCountries = `CREATE TABLE IF NOT EXISTS Countries (
    country_tag TEXT NOT NULL,
    save_id TEXT NOT NULL,
    name TEXT,
    PRIMARY KEY (country_tag, save_id),
    FOREIGN KEY (save_id) REFERENCES Saves(save_id)
);`

	createWars = `CREATE TABLE IF NOT EXISTS Wars (
    war_id TEXT PRIMARY KEY,
    save_id TEXT NOT NULL,
    started_on TEXT,
    ended_on TEXT,
    casus_belli TEXT,
    status TEXT,
    FOREIGN KEY (save_id) REFERENCES Saves(save_id)
);`

	createWarParticipants = `CREATE TABLE IF NOT EXISTS War_Participants (
    war_part_id INTEGER PRIMARY KEY AUTOINCREMENT,
    war_id TEXT NOT NULL,
    country_tag TEXT NOT NULL,
    role TEXT NOT NULL,
    war_score REAL,
    casualties REAL,
    save_id TEXT NOT NULL,
    FOREIGN KEY (war_id) REFERENCES Wars(war_id),
    FOREIGN KEY (country_tag, save_id) REFERENCES Countries(country_tag, save_id)
);`

	createBattles = `CREATE TABLE IF NOT EXISTS Battles (
    battle_id TEXT PRIMARY KEY,
    war_id TEXT NOT NULL,
    occurred_on TEXT,
    location TEXT,
    attacker_tag TEXT,
    defender_tag TEXT,
    attacker_cas REAL,
    defender_cas REAL,
    winner TEXT,
    save_id TEXT NOT NULL,
    FOREIGN KEY (war_id) REFERENCES Wars(war_id),
    FOREIGN KEY (attacker_tag, save_id) REFERENCES Countries(country_tag, save_id),
    FOREIGN KEY (defender_tag, save_id) REFERENCES Countries(country_tag, save_id)
);`

	createCountryMetrics = `CREATE TABLE IF NOT EXISTS CountryMetrics (
    metric_id INTEGER PRIMARY KEY AUTOINCREMENT,
    country_tag TEXT NOT NULL,
    name TEXT NOT NULL,
    amount REAL,
    recorded_at TEXT,
    save_id TEXT NOT NULL,
    FOREIGN KEY (country_tag, save_id) REFERENCES Countries(country_tag, save_id)
);`

	createCountrySnapshot = `CREATE TABLE IF NOT EXISTS country_snapshot (
    playthrough_id TEXT,
    save_date TEXT,
    country_id TEXT,
    gdp REAL,
    population REAL,
    weekly_income REAL,
    weekly_expenses REAL,
    money REAL,
    prestige REAL,
    literacy REAL,
    sol REAL,
    infamy REAL,
    PRIMARY KEY (playthrough_id, save_date, country_id)
);`

	createRawJSON = `CREATE TABLE IF NOT EXISTS raw_json (
    section TEXT PRIMARY KEY,
    payload JSON NOT NULL
);`
)

// Index DDL. The two unique indexes are the natural keys the writer upserts
// the autoincrement tables on; the rest serve per-save and time-series reads.
const (
	idxWarParticipantsKey  = `CREATE UNIQUE INDEX IF NOT EXISTS idx_war_participants_key ON War_Participants(war_id, country_tag, role);`
	idxCountryMetricsKey   = `CREATE UNIQUE INDEX IF NOT EXISTS idx_country_metrics_key ON CountryMetrics(country_tag, save_id, name);`
	idxWarsSave            = `CREATE INDEX IF NOT EXISTS idx_wars_save ON Wars(save_id);`
	idxWarParticipantsSave = `CREATE INDEX IF NOT EXISTS idx_war_participants_save ON War_Participants(save_id);`
	idxBattlesWar          = `CREATE INDEX IF NOT EXISTS idx_battles_war ON Battles(war_id);`
	idxCountryMetricsSave  = `CREATE INDEX IF NOT EXISTS idx_country_metrics_save ON CountryMetrics(save_id);`
	idxCountryMetricsName  = `CREATE INDEX IF NOT EXISTS idx_country_metrics_name ON CountryMetrics(country_tag, name);`
	idxCountrySnapshotCtry = `CREATE INDEX IF NOT EXISTS idx_country_snapshot_country ON country_snapshot(playthrough_id, country_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order: parents
// before the tables that reference them.
var schemaDDL = []string{
	createSaves,
	createCountries,
	createWars,
	createWarParticipants,
	createBattles,
	createCountryMetrics,
	createCountrySnapshot,
	createRawJSON,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxWarParticipantsKey,
	idxCountryMetricsKey,
	idxWarsSave,
	idxWarParticipantsSave,
	idxBattlesWar,
	idxCountryMetricsSave,
	idxCountryMetricsName,
	idxCountrySnapshotCtry,
}
