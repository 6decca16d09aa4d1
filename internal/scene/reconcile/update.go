package reconcile

import (
	"encoding/json"

	"github.com/boardroomhq/boardroom/internal/scene/metrics"
)

// UpdateKind discriminates reconciler update records.
type UpdateKind string

const (
	// UpdateMeeting reports a meeting lifecycle change.
	UpdateMeeting UpdateKind = "meeting"
	// UpdateMetrics reports new novelty/consensus targets.
	UpdateMetrics UpdateKind = "metrics"
	// UpdateSummary forwards a completion summary verbatim.
	UpdateSummary UpdateKind = "summary"
)

// Update is the record delivered to presentation subscribers for state the
// registry does not own: meeting lifecycle, metric targets, and the
// pass-through completion summary. Exactly one of the optional fields is
// populated, matching Kind.
type Update struct {
	Kind    UpdateKind       `json:"kind"`
	Meeting *Meeting         `json:"meeting,omitempty"`
	Metrics *metrics.Reading `json:"metrics,omitempty"`
	Summary json.RawMessage  `json:"summary,omitempty"`
}
