package slpz

import (
	"github.com/blang/semver/v4"
)

// MaxRollbackFrames bounds how far behind the latest finalized frame can
// trail a frame bookend before AnalyzerOptions.Strict treats it as an
// error, matching the real Melee client's rollback window.
const MaxRollbackFrames = 7

// AnalyzerOptions controls how strictly a ReplayAnalyzer validates frame
// data while walking a replay's event stream.
type AnalyzerOptions struct {
	Strict bool
}

// FrameUpdateType distinguishes the two halves of a frame update.
type FrameUpdateType string

// FrameUpdateTypes
const (
	Pre  FrameUpdateType = "pre"
	Post FrameUpdateType = "post"
)

// FrameUpdates holds the pre- and post-frame updates recorded for one
// actor on one frame.
type FrameUpdates struct {
	Pre  *PreFrameUpdatePayload
	Post *PostFrameUpdatePayload
}

// FrameEntry contains every update recorded for a given frame.
type FrameEntry struct {
	Players            map[uint8]FrameUpdates
	Followers          map[uint8]FrameUpdates
	Items              []ItemUpdatePayload
	IsTransferComplete bool
}

// GameInfo contains the general information about a game of Melee, decoded
// from the verbatim Game Start bytes.
type GameInfo struct {
	Version    semver.Version
	Teams      bool
	PAL        bool
	Stage      uint16
	Players    []PlayerInfo
	MajorScene uint8
	MinorScene uint8
}

// ParserEvent enumerates the events a ReplayAnalyzer emits.
type ParserEvent uint8

// ParserEvents
const (
	Started ParserEvent = iota
	Frame
	FinalizedFrame
	RollbackFrame
	Ended
)

// Rollbacks tracks the rollback frames observed within a replay.
type Rollbacks struct {
	Frames                map[int32][]FrameEntry
	Count                 int
	Lengths               []int
	playerIndex           int8
	lastFrameWasRollback  bool
	currentRollbackLength int
}

func newRollbacks() Rollbacks {
	return Rollbacks{
		Frames:      make(map[int32][]FrameEntry),
		Lengths:     make([]int, 0),
		playerIndex: -1,
	}
}

func (r *Rollbacks) checkIfRollbackFrame(frameIndex int32, frame *FrameEntry, playerIndex uint8) bool {
	if r.playerIndex == -1 {
		r.playerIndex = int8(playerIndex)
	} else if r.playerIndex != int8(playerIndex) {
		return false
	}

	if frame != nil {
		r.Frames[frameIndex] = append(r.Frames[frameIndex], *frame)
		r.Count++
		r.currentRollbackLength++
		r.lastFrameWasRollback = true
	} else if r.lastFrameWasRollback {
		r.Lengths = append(r.Lengths, r.currentRollbackLength)
		r.currentRollbackLength = 0
		r.lastFrameWasRollback = false
	}

	return r.lastFrameWasRollback
}

// ReplayAnalyzer reconstructs per-frame game state from an already
// byte-exact ParseSlp result. It is a read-only enrichment layer: nothing
// it does affects Encode/Decode's byte-exact contract.
type ReplayAnalyzer struct {
	parsed             *ParsedSlp
	Options            AnalyzerOptions
	Frames             map[int32]FrameEntry
	Rollbacks          Rollbacks
	GameEnd            *GameEndPayload
	gameInfo           *GameInfo
	handlers           map[ParserEvent][]chan interface{}
	latestFrameIndex   int32
	lastFinalizedFrame int32
	gameInfoComplete   bool
}

// NewReplayAnalyzer creates a ReplayAnalyzer over an already-parsed SLP
// file. Call Analyze to walk the event stream and populate frame state.
func NewReplayAnalyzer(parsed *ParsedSlp, opts AnalyzerOptions) *ReplayAnalyzer {
	return &ReplayAnalyzer{
		parsed:             parsed,
		Options:            opts,
		Frames:             make(map[int32]FrameEntry),
		Rollbacks:          newRollbacks(),
		handlers:           make(map[ParserEvent][]chan interface{}),
		latestFrameIndex:   -124,
		lastFinalizedFrame: -124,
	}
}

// AddHandler attaches an event handler channel to a ParserEvent.
func (a *ReplayAnalyzer) AddHandler(event ParserEvent, handler chan interface{}) {
	a.handlers[event] = append(a.handlers[event], handler)
}

// RemoveHandler detaches an event handler channel from a ParserEvent.
func (a *ReplayAnalyzer) RemoveHandler(event ParserEvent, toRemove chan interface{}) {
	handlers, ok := a.handlers[event]
	if !ok {
		return
	}
	for i, handler := range handlers {
		if handler == toRemove {
			a.handlers[event] = append(handlers[:i], handlers[i+1:]...)
			return
		}
	}
}

// Trigger sends payload to every handler channel attached to event.
func (a *ReplayAnalyzer) Trigger(event ParserEvent, payload interface{}) {
	for _, handler := range a.handlers[event] {
		h := handler
		go func() { h <- payload }()
	}
}

// GetGameInfo returns the parsed game info, and whether it is complete yet.
func (a *ReplayAnalyzer) GetGameInfo() (*GameInfo, bool) {
	return a.gameInfo, a.gameInfoComplete
}

// Analyze walks the replay's events, populating Frames, Rollbacks, and
// GameEnd. If onlyGameInfo is true, it stops reading events as soon as
// GameInfo is complete instead of processing every frame. The decision to
// stop is made here, in the sole goroutine that ever touches
// a.gameInfoComplete, rather than in walkEvents' producer goroutine.
func (a *ReplayAnalyzer) Analyze(onlyGameInfo bool) error {
	events := walkEvents(a.parsed.GameStartBytes, a.parsed.EventStreamBytes, &a.parsed.Sizes)
	for result := range events {
		if result.Error != nil {
			drainEvents(events)
			return result.Error
		}
		if err := a.handleEvent(*result.Event); err != nil {
			drainEvents(events)
			return err
		}
		if onlyGameInfo && a.gameInfoComplete {
			drainEvents(events)
			return nil
		}
	}

	return nil
}

func drainEvents(events <-chan *SlpEventResult) {
	for range events {
	}
}

func (a *ReplayAnalyzer) handleEvent(event SlpEvent) error {
	switch event.Command {
	case GameStart:
		a.handleGameStart(event.Payload.(GameStartPayload))
	case PreFrameUpdate:
		return a.handleFrameUpdate(Pre, event.Payload.(PreFrameUpdatePayload))
	case PostFrameUpdate:
		return a.handlePostFrameUpdate(event.Payload.(PostFrameUpdatePayload))
	case GameEnd:
		return a.handleGameEnd(event.Payload.(GameEndPayload))
	case ItemUpdate:
		a.handleItemUpdate(event.Payload.(ItemUpdatePayload))
	case FrameBookend:
		return a.handleFrameBookend(event.Payload.(FrameBookendPayload))
	}
	return nil
}

func (a *ReplayAnalyzer) handleGameStart(payload GameStartPayload) {
	players := make([]PlayerInfo, 0, len(payload.Players))
	for _, player := range payload.Players {
		if player.PlayerType != Empty {
			players = append(players, player)
		}
	}

	a.gameInfo = &GameInfo{
		Version:    payload.Version,
		Teams:      payload.GameInfoBlock.IsTeams,
		PAL:        payload.PAL,
		Stage:      payload.GameInfoBlock.Stage,
		Players:    players,
		MajorScene: payload.MajorScene,
		MinorScene: payload.MinorScene,
	}

	if payload.Version.GTE(semver.MustParse("1.6.0")) {
		a.completeGameInfo()
	}
}

func (a *ReplayAnalyzer) handleFrameUpdate(updateType FrameUpdateType, payload FrameUpdatePayload) error {
	fu := payload.GetFrameUpdate()
	frame := a.getFrame(fu.FrameNumber)

	a.latestFrameIndex = fu.FrameNumber
	if updateType == Pre && !fu.IsFollower {
		existing, seenBefore := a.Frames[fu.FrameNumber]
		var recurrence *FrameEntry
		if seenBefore {
			recurrence = &existing
		}
		if a.Rollbacks.checkIfRollbackFrame(fu.FrameNumber, recurrence, fu.PlayerIndex) {
			a.Trigger(RollbackFrame, existing)
		}
	}

	bucket := frame.Players
	if fu.IsFollower {
		bucket = frame.Followers
	}
	updates := bucket[fu.PlayerIndex]
	switch updateType {
	case Pre:
		p := payload.(PreFrameUpdatePayload)
		updates.Pre = &p
	case Post:
		p := payload.(PostFrameUpdatePayload)
		updates.Post = &p
	}
	bucket[fu.PlayerIndex] = updates

	a.Frames[fu.FrameNumber] = frame

	if a.gameInfo != nil && a.gameInfo.Version.LTE(semver.MustParse("2.2.0")) {
		a.Trigger(Frame, a.Frames[fu.FrameNumber])
		return a.finalizeFrames(fu.FrameNumber - 1)
	}

	frame.IsTransferComplete = false
	a.Frames[fu.FrameNumber] = frame
	return nil
}

func (a *ReplayAnalyzer) handlePostFrameUpdate(payload PostFrameUpdatePayload) error {
	if err := a.handleFrameUpdate(Post, payload); err != nil {
		return err
	}

	if a.gameInfoComplete {
		return nil
	}

	if payload.FrameNumber <= -123 {
		for i, player := range a.gameInfo.Players {
			if player.Index == payload.PlayerIndex {
				switch payload.InternalCharacterID {
				case 0x7:
					a.gameInfo.Players[i].CharacterID = 0x13
				case 0x13:
					a.gameInfo.Players[i].CharacterID = 0x12
				}
			}
		}
	}

	if payload.FrameNumber > -123 {
		a.completeGameInfo()
	}

	return nil
}

func (a *ReplayAnalyzer) handleGameEnd(payload GameEndPayload) error {
	var err error
	if a.latestFrameIndex > -124 && a.latestFrameIndex != a.lastFinalizedFrame {
		err = a.finalizeFrames(a.latestFrameIndex)
	}

	a.GameEnd = &payload
	a.Trigger(Ended, payload)

	return err
}

func (a *ReplayAnalyzer) handleItemUpdate(payload ItemUpdatePayload) {
	frame := a.getFrame(payload.FrameNumber)
	frame.Items = append(frame.Items, payload)
	a.Frames[payload.FrameNumber] = frame
}

func (a *ReplayAnalyzer) handleFrameBookend(payload FrameBookendPayload) error {
	frame := a.getFrame(payload.FrameNumber)
	frame.IsTransferComplete = true
	a.Frames[payload.FrameNumber] = frame

	a.Trigger(Frame, frame)

	validLatestFrame := a.gameInfo != nil && a.gameInfo.MajorScene == 0x8
	if validLatestFrame && payload.LatestFinalizedFrame >= -123 {
		if a.Options.Strict && payload.LatestFinalizedFrame < payload.FrameNumber-MaxRollbackFrames {
			return newErr(MalformedSlp, "latest finalized frame should be within %d frames of %d", MaxRollbackFrames, payload.FrameNumber)
		}
		return a.finalizeFrames(payload.LatestFinalizedFrame)
	}
	return a.finalizeFrames(payload.FrameNumber - MaxRollbackFrames)
}

func (a *ReplayAnalyzer) finalizeFrames(frameNumber int32) error {
	for a.lastFinalizedFrame < frameNumber {
		toFinalize := a.lastFinalizedFrame + 1
		frame, ok := a.Frames[toFinalize]
		if !ok {
			return nil
		}

		if a.Options.Strict {
			for _, player := range a.gameInfo.Players {
				info, ok := frame.Players[player.Index]
				if !ok {
					if len(a.gameInfo.Players) > 2 {
						continue
					}
					return newErr(MalformedSlp, "could not finalize frame %d of %d: missing pre-frame update for player %d", toFinalize, frameNumber, player.Index)
				}
				if info.Pre == nil || info.Post == nil {
					missing := "pre"
					if info.Pre != nil {
						missing = "post"
					}
					return newErr(MalformedSlp, "could not finalize frame %d of %d: missing %s-frame update for player %d", toFinalize, frameNumber, missing, player.Index)
				}
			}
		}

		a.Trigger(FinalizedFrame, frame)
		a.lastFinalizedFrame = toFinalize
	}
	return nil
}

func (a *ReplayAnalyzer) completeGameInfo() {
	if a.gameInfoComplete {
		return
	}
	a.gameInfoComplete = true
	a.Trigger(Started, a.gameInfo)
}

func (a *ReplayAnalyzer) getFrame(frameNumber int32) FrameEntry {
	frame, ok := a.Frames[frameNumber]
	if !ok {
		frame = FrameEntry{
			Players:   make(map[uint8]FrameUpdates),
			Followers: make(map[uint8]FrameUpdates),
		}
	}
	return frame
}

// SlpEventResult is a single decoded event, or the error that stopped
// decoding.
type SlpEventResult struct {
	Event *SlpEvent
	Error error
}

// walkEvents decodes the Game Start event followed by every event in
// eventStream, sending each to the returned channel. It always runs to
// completion or the first decode error; callers that want to stop early
// (e.g. once GameInfo is complete) drain the channel themselves rather
// than signaling this producer goroutine, since the condition they stop
// on is state only the consumer goroutine mutates.
func walkEvents(gameStartBytes, eventStream []byte, sizes *SizeTable) <-chan *SlpEventResult {
	send, receive := MakeUnboundedChannel[SlpEventResult]()

	go func() {
		defer close(send)

		gsEvent, err := decodeEvent(GameStart, gameStartBytes[1:])
		if err != nil {
			send <- &SlpEventResult{Error: err}
			return
		}
		send <- &SlpEventResult{Event: gsEvent}

		pos := 0
		for pos < len(eventStream) {
			cmd := eventStream[pos]
			size := int(sizes[cmd])
			payload := eventStream[pos+1 : pos+1+size]

			event, err := decodeEvent(Command(cmd), payload)
			if err != nil {
				send <- &SlpEventResult{Error: err}
				return
			}
			send <- &SlpEventResult{Event: event}

			pos += 1 + size
		}
	}()

	return receive
}
