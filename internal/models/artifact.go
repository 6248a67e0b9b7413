package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Artifact lifecycle states. Transitions are strictly
// pending -> processing -> success|failed; a terminal state is only left
// again through a forced regeneration.
const (
	ArtifactStatusPending    = "pending"
	ArtifactStatusProcessing = "processing"
	ArtifactStatusSuccess    = "success"
	ArtifactStatusFailed     = "failed"
)

// ArtifactKind enumerates the four generated artifact categories.
type ArtifactKind string

// Supported artifact kinds.
const (
	ArtifactKindTeamSummary      ArtifactKind = "team_summary"
	ArtifactKindTeamEvaluation   ArtifactKind = "team_evaluation"
	ArtifactKindTeamBlog         ArtifactKind = "team_blog"
	ArtifactKindHackathonInsight ArtifactKind = "hackathon_insight"
)

// Valid reports whether the kind is one of the supported categories.
func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactKindTeamSummary, ArtifactKindTeamEvaluation, ArtifactKindTeamBlog, ArtifactKindHackathonInsight:
		return true
	}
	return false
}

// TeamScoped reports whether the kind is generated per team. The hackathon
// insight report is the only hackathon-wide artifact.
func (k ArtifactKind) TeamScoped() bool {
	return k != ArtifactKindHackathonInsight
}

// ArtifactKey identifies at most one artifact row: (hackathon, kind, team?).
type ArtifactKey struct {
	HackathonID uint
	Kind        ArtifactKind
	TeamID      *uint
}

// String renders the key for logs and event payloads.
func (k ArtifactKey) String() string {
	if k.TeamID != nil {
		return fmt.Sprintf("%s/hackathon:%d/team:%d", k.Kind, k.HackathonID, *k.TeamID)
	}
	return fmt.Sprintf("%s/hackathon:%d", k.Kind, k.HackathonID)
}

// ScoreEntry is one criterion's judged score within an evaluation. The weight
// is a value copy taken from the criterion at evaluation time.
type ScoreEntry struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Feedback string  `json:"feedback"`
}

// ScoreMap maps criterion name to its score entry. Stored as a JSON column.
type ScoreMap map[string]ScoreEntry

// Value implements driver.Valuer so gorm can persist the map as JSON.
func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// GormDataType tells the migrator to back the map with a JSON column.
func (ScoreMap) GormDataType() string {
	return "json"
}

// Scan implements sql.Scanner for reading the JSON column back.
func (m *ScoreMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported score map source type %T", value)
	}

	return json.Unmarshal(raw, m)
}

// Artifact is one generated document: a team summary, evaluation, blog post,
// or hackathon-wide insight report. Exactly one row exists per key.
type Artifact struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	HackathonID uint         `gorm:"not null;uniqueIndex:idx_artifacts_key" json:"hackathon_id"`
	Kind        ArtifactKind `gorm:"size:32;not null;uniqueIndex:idx_artifacts_key" json:"kind"`
	TeamID      *uint        `gorm:"uniqueIndex:idx_artifacts_key" json:"team_id,omitempty"`
	Status      string       `gorm:"size:32;not null;default:pending" json:"status"`
	Content     string       `gorm:"type:text" json:"content"`
	Scores      ScoreMap     `json:"scores,omitempty"`
	TotalScore  *float64     `json:"total_score,omitempty"`
	Comments    string       `gorm:"type:text" json:"comments"`
	Meta        datatypes.JSONMap `json:"meta,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Key rebuilds the identity tuple of the artifact.
func (a Artifact) Key() ArtifactKey {
	return ArtifactKey{HackathonID: a.HackathonID, Kind: a.Kind, TeamID: a.TeamID}
}

// IsTerminal reports whether the artifact reached a final state.
func (a Artifact) IsTerminal() bool {
	return a.Status == ArtifactStatusSuccess || a.Status == ArtifactStatusFailed
}

// IsSynthetic reports whether the artifact content came from the offline
// fallback path rather than a real model response.
func (a Artifact) IsSynthetic() bool {
	if a.Meta == nil {
		return false
	}
	synthetic, ok := a.Meta["synthetic"].(bool)
	return ok && synthetic
}
