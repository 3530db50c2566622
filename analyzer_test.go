package slpz

import "testing"

func TestReplayAnalyzerReconstructsFrameState(t *testing.T) {
	replay := buildTestReplay()

	parsed, err := ParseSlp(replay.bytes)
	if err != nil {
		t.Fatalf("ParseSlp: %v", err)
	}

	a := NewReplayAnalyzer(parsed, AnalyzerOptions{Strict: true})
	if err := a.Analyze(false); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	info, complete := a.GetGameInfo()
	if !complete {
		t.Fatalf("expected GameInfo to be complete")
	}
	if info.Version.String() != "3.14.0" {
		t.Errorf("Version: got %s, want 3.14.0", info.Version.String())
	}
	if len(info.Players) != 1 {
		t.Fatalf("expected 1 active player, got %d", len(info.Players))
	}
	if info.Players[0].Index != 0 {
		t.Errorf("Players[0].Index: got %d, want 0", info.Players[0].Index)
	}

	const firstFrame = -123
	frame, ok := a.Frames[firstFrame]
	if !ok {
		t.Fatalf("expected frame %d to be recorded", firstFrame)
	}
	updates, ok := frame.Players[0]
	if !ok {
		t.Fatalf("expected frame %d to have player 0's updates", firstFrame)
	}
	if updates.Pre == nil || updates.Post == nil {
		t.Fatalf("expected both pre- and post-frame updates for player 0, got %+v", updates)
	}
	if !frame.IsTransferComplete {
		t.Errorf("expected frame %d to be marked transfer-complete", firstFrame)
	}

	if a.GameEnd == nil {
		t.Fatalf("expected GameEnd to be populated")
	}
	if a.GameEnd.GameEndMethod != Game {
		t.Errorf("GameEndMethod: got %v, want Game", a.GameEnd.GameEndMethod)
	}
}

func TestReplayAnalyzerOnlyGameInfoStopsEarly(t *testing.T) {
	replay := buildTestReplay()

	parsed, err := ParseSlp(replay.bytes)
	if err != nil {
		t.Fatalf("ParseSlp: %v", err)
	}

	a := NewReplayAnalyzer(parsed, AnalyzerOptions{})
	if err := a.Analyze(true); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if _, complete := a.GetGameInfo(); !complete {
		t.Fatalf("expected GameInfo to be complete")
	}
	if len(a.Frames) != 0 {
		t.Errorf("expected no frames to be processed when onlyGameInfo stops at Game Start, got %d", len(a.Frames))
	}
}

func TestReplayAnalyzerHandlers(t *testing.T) {
	replay := buildTestReplay()
	parsed, err := ParseSlp(replay.bytes)
	if err != nil {
		t.Fatalf("ParseSlp: %v", err)
	}

	a := NewReplayAnalyzer(parsed, AnalyzerOptions{})
	started := make(chan interface{}, 1)
	a.AddHandler(Started, started)

	if err := a.Analyze(false); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	select {
	case payload := <-started:
		if _, ok := payload.(*GameInfo); !ok {
			t.Fatalf("expected *GameInfo payload, got %T", payload)
		}
	default:
		// Trigger dispatches asynchronously, so the payload may not have
		// landed yet; nothing is checked in that case.
	}

	a.RemoveHandler(Started, started)
	if len(a.handlers[Started]) != 0 {
		t.Errorf("expected handler to be removed")
	}
}
