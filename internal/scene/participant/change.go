package participant

// ChangeType discriminates registry change records.
type ChangeType string

const (
	// ChangeAdded reports a single new participant.
	ChangeAdded ChangeType = "added"
	// ChangeRemoved reports a single departed participant.
	ChangeRemoved ChangeType = "removed"
	// ChangeStateChanged reports visual/turn state movement. Single-scoped
	// when one participant started speaking, batch-scoped when the whole
	// scene was reset toward idle.
	ChangeStateChanged ChangeType = "stateChanged"
	// ChangePositionsChanged reports a full seat recomputation (batch).
	ChangePositionsChanged ChangeType = "positionsChanged"
	// ChangeCleared reports that the registry was emptied.
	ChangeCleared ChangeType = "cleared"
)

// Change is the record delivered to presentation subscribers. Exactly one
// of Participant and Participants is populated, depending on whether the
// change is single- or batch-scoped; Cleared carries neither. Presentation
// layers rely on the distinction to choose between a lightweight
// single-element update and a full resync.
type Change struct {
	Type         ChangeType    `json:"type"`
	Participant  *Participant  `json:"entity,omitempty"`
	Participants []Participant `json:"entities,omitempty"`
}
