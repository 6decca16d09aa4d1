// Package demo replays a scripted meeting through the event pipeline.
// The driver produces the same envelopes a live bus would deliver, so
// every downstream component is exercised without infrastructure.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/boardroomhq/boardroom/internal/event"
	"github.com/boardroomhq/boardroom/internal/id"
)

// DefaultStepDelay paces scripted events for a watchable playback.
const DefaultStepDelay = 1200 * time.Millisecond

// DefaultRestartPause separates the end of one scripted meeting from the
// next when looping.
const DefaultRestartPause = 4 * time.Second

// Handler receives each scripted envelope.
type Handler func(ctx context.Context, env event.Envelope)

// Options configures a Driver.
type Options struct {
	// Handler receives scripted envelopes. Required.
	Handler Handler
	// StepDelay overrides DefaultStepDelay.
	StepDelay time.Duration
	// Loop restarts the script after completion instead of returning.
	Loop bool
	// RestartPause overrides DefaultRestartPause.
	RestartPause time.Duration
}

// Driver replays the built-in meeting script.
type Driver struct {
	handler Handler
	delay   time.Duration
	loop    bool
	pause   time.Duration
}

// NewDriver creates a driver over the given handler.
func NewDriver(opts Options) *Driver {
	delay := opts.StepDelay
	if delay <= 0 {
		delay = DefaultStepDelay
	}
	pause := opts.RestartPause
	if pause <= 0 {
		pause = DefaultRestartPause
	}
	return &Driver{handler: opts.Handler, delay: delay, loop: opts.Loop, pause: pause}
}

type step struct {
	eventType string
	payload   string
}

// script is one full meeting: creation, three rounds of turns with
// falling novelty, convergence, and completion.
var script = []step{
	{"demo.meeting.created", `{"topic":"Should we ship the prototype?","max_rounds":3}`},
	{"demo.meeting.started", `{"selected_agents":["Ada","Grace","Linus","Margaret"]}`},
	{"demo.participant.turn.completed", `{"agent_name":"Ada","turn_type":"primary","round_num":1}`},
	{"demo.participant.turn.completed", `{"agent_name":"Grace","turn_type":"turn","round_num":1}`},
	{"demo.participant.turn.completed", `{"agent_name":"Linus","turn_type":"turn","round_num":1}`},
	{"demo.meeting.round_completed", `{"round_num":1,"avg_novelty":78}`},
	{"demo.participant.turn.completed", `{"agent_name":"Margaret","turn_type":"primary","round_num":2}`},
	{"demo.participant.turn.completed", `{"agent_name":"Ada","turn_type":"follow_up","round_num":2}`},
	{"demo.meeting.round_completed", `{"round_num":2,"avg_novelty":41}`},
	{"demo.participant.turn.completed", `{"agent_name":"Grace","turn_type":"primary","round_num":3}`},
	{"demo.participant.turn.completed", `{"agent_name":"Linus","turn_type":"follow_up","round_num":3}`},
	{"demo.meeting.round_completed", `{"round_num":3,"avg_novelty":17}`},
	{"demo.meeting.converged", `{"round_num":3}`},
	{"demo.meeting.completed", `{"total_rounds":3,"summary":{"verdict":"ship it","dissent":["Linus"]}}`},
}

// Run replays the script until it ends, or until ctx is cancelled. With
// Loop set it restarts after a pause, generating a fresh meeting id each
// time.
func (d *Driver) Run(ctx context.Context) error {
	for {
		if err := d.playOnce(ctx); err != nil {
			return err
		}
		if !d.loop {
			return nil
		}
		if err := wait(ctx, d.pause); err != nil {
			return err
		}
	}
}

func (d *Driver) playOnce(ctx context.Context) error {
	meetingID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("demo: meeting id: %w", err)
	}
	for i, s := range script {
		if err := wait(ctx, d.delay); err != nil {
			return err
		}
		eventID, err := id.NewID()
		if err != nil {
			log.Printf("demo: event id: %v", err)
			eventID = fmt.Sprintf("demo-%s-%d", meetingID, i)
		}
		d.handler(ctx, event.Envelope{
			EventID:       eventID,
			EventType:     s.eventType,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Source:        event.Source{App: "boardroom-demo"},
			Payload:       json.RawMessage(s.payload),
			CorrelationID: meetingID,
		})
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
