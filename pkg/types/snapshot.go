// Normalized records produced from one save snapshot.
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// saveNamespace seeds the name-based UUIDs used as Saves primary keys.
var saveNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mesh-intelligence/almanac/saves"))

// Snapshot identifies one ingestion event. A snapshot is immutable once
// written; ingesting the same key again replaces the values stored for it.
type Snapshot struct {
	PlaythroughID string
	SaveDate      string // in-game date as text; empty when the document carries none
}

// SaveID returns the deterministic identifier of the snapshot's Saves row.
// The same (playthrough, date) pair always yields the same ID, so repeated
// ingestion updates one row instead of adding another.
func (s Snapshot) SaveID() string {
	return uuid.NewSHA1(saveNamespace, []byte(s.PlaythroughID+"\x00"+s.SaveDate)).String()
}

// ValidatePlaythroughID returns ErrInvalidPlaythrough when id is empty or
// blank. Any other id is opaque and stored exactly as given.
func ValidatePlaythroughID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidPlaythrough
	}
	return nil
}

// SnapshotInfo describes where a document came from.
type SnapshotInfo struct {
	Filename string
	SavedAt  time.Time // modification time of the save file; zero if unknown
}

// CountrySnapshot is one row of the flattened country_snapshot time series.
// Attributes are zero, never null, when the source omits or malforms them.
type CountrySnapshot struct {
	PlaythroughID  string
	SaveDate       string
	CountryID      string
	GDP            float64
	Population     float64
	WeeklyIncome   float64
	WeeklyExpenses float64
	Money          float64
	Prestige       float64
	Literacy       float64
	SOL            float64
	Infamy         float64
}

// Save is one row of Saves.
type Save struct {
	SaveID     string
	Filename   string
	SavedAt    string // RFC 3339 UTC, or empty
	InGameDate string
}

// Country is the identity row of a country within one save.
type Country struct {
	Tag    string
	SaveID string
	Name   string
}

// War status values.
const (
	WarStatusActive = "active"
	WarStatusEnded  = "ended"
)

// War is one row of Wars.
type War struct {
	WarID      string // <save_id>/<war registry key>
	SaveID     string
	StartedOn  string
	EndedOn    string
	CasusBelli string
	Status     string
}

// Participant roles.
const (
	RoleAttacker = "attacker"
	RoleDefender = "defender"
)

// WarParticipant is one country's side in a war.
type WarParticipant struct {
	WarID      string
	SaveID     string
	CountryTag string
	Role       string
	WarScore   float64
	Casualties float64
}

// Battle is one row of Battles.
type Battle struct {
	BattleID           string // <war_id>/<battle registry key>
	WarID              string
	SaveID             string
	OccurredOn         string
	Location           string
	AttackerTag        string
	DefenderTag        string
	AttackerCasualties float64
	DefenderCasualties float64
	Winner             string
}

// CountryMetric is one named measurement of a country at a save date.
type CountryMetric struct {
	CountryTag string
	SaveID     string
	Name       string
	Amount     float64
	RecordedAt string
}

// RawSection is one top-level section of the ingested document, stored
// verbatim as compact JSON.
type RawSection struct {
	Section string
	Payload string
}

// Batch holds everything extracted from one snapshot. It is written as a
// single unit.
type Batch struct {
	Snapshot         Snapshot
	Save             Save
	Countries        []Country
	CountrySnapshots []CountrySnapshot
	Wars             []War
	Battles          []Battle
	WarParticipants  []WarParticipant
	CountryMetrics   []CountryMetric
	RawSections      []RawSection

	// Dropped counts relationship rows discarded during mapping because they
	// referenced a country absent from the registry.
	Dropped int
}

// Rows returns the number of rows the batch writes, keyed by table name.
func (b Batch) Rows() map[string]int {
	return map[string]int{
		TableSaves:           1,
		TableCountries:       len(b.Countries),
		TableCountrySnapshot: len(b.CountrySnapshots),
		TableWars:            len(b.Wars),
		TableBattles:         len(b.Battles),
		TableWarParticipants: len(b.WarParticipants),
		TableCountryMetrics:  len(b.CountryMetrics),
		TableRawJSON:         len(b.RawSections),
	}
}

// Table names of the persisted schema.
const (
	TableSaves           = "Saves"
	TableCountries       = "Countries"
	TableWars            = "Wars"
	TableWarParticipants = "War_Participants"
	TableBattles         = "Battles"
	TableCountryMetrics  = "CountryMetrics"
	TableCountrySnapshot = "country_snapshot"
	TableRawJSON         = "raw_json"
)
