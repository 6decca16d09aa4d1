package web

import (
	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/scene/reconcile"
)

// FrameType discriminates the frames pushed to viewers.
type FrameType string

const (
	// FrameSnapshot carries the full scene, sent once on connect.
	FrameSnapshot FrameType = "snapshot"
	// FrameScene carries one participant change record.
	FrameScene FrameType = "scene"
	// FrameUpdate carries one meeting/metrics/summary update.
	FrameUpdate FrameType = "update"
)

// Frame is the wire shape pushed over the viewer websocket. Exactly one
// of the optional fields is populated, matching Type.
type Frame struct {
	Type     FrameType           `json:"type"`
	Snapshot *Snapshot           `json:"snapshot,omitempty"`
	Scene    *participant.Change `json:"scene,omitempty"`
	Update   *reconcile.Update   `json:"update,omitempty"`
}

// Snapshot is the complete scene state, used both for the connect frame
// and the /state endpoint.
type Snapshot struct {
	Meeting      reconcile.Meeting         `json:"meeting"`
	Participants []participant.Participant `json:"participants"`
	Metrics      metrics.Reading           `json:"metrics"`
}
