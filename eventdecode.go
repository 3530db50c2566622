package slpz

import (
	"encoding/binary"
	"math"

	"github.com/blang/semver/v4"
	"golang.org/x/text/encoding/japanese"
)

// decodeEvent decodes a single event's payload bytes into the typed
// payload for its command, for use by ReplayAnalyzer. This is read-only
// enrichment over an already byte-exact parse; it has no bearing on
// Encode/Decode correctness.
//
// See https://github.com/project-slippi/slippi-wiki/blob/master/SPEC.md
func decodeEvent(command Command, payloadBytes []byte) (*SlpEvent, error) {
	var payload interface{}

	switch command {
	case GameStart:
		gs, err := decodeGameStart(payloadBytes)
		if err != nil {
			return nil, err
		}
		payload = *gs
	case PreFrameUpdate:
		payload = PreFrameUpdatePayload{
			FrameUpdate: FrameUpdate{
				FrameNumber:     int32(binary.BigEndian.Uint32(payloadBytes[0x0:0x4])),
				PlayerIndex:     payloadBytes[0x4],
				IsFollower:      payloadBytes[0x5] != 0,
				ActionStateID:   binary.BigEndian.Uint16(payloadBytes[0xA:0xC]),
				XPosition:       readFloat(payloadBytes[0xC:0x10]),
				YPosition:       readFloat(payloadBytes[0x10:0x14]),
				FacingDirection: readFloat(payloadBytes[0x14:0x18]),
				Percent:         readFloat(payloadBytes[0x3B:0x3F]),
			},
			RandomSeed:       binary.BigEndian.Uint32(payloadBytes[0x6:0xA]),
			JoystickX:        readFloat(payloadBytes[0x18:0x1C]),
			JoystickY:        readFloat(payloadBytes[0x1C:0x20]),
			CStickX:          readFloat(payloadBytes[0x20:0x24]),
			CStickY:          readFloat(payloadBytes[0x24:0x28]),
			Trigger:          readFloat(payloadBytes[0x28:0x2C]),
			ProcessedButtons: binary.BigEndian.Uint32(payloadBytes[0x2C:0x30]),
			PhysicalButtons:  binary.BigEndian.Uint16(payloadBytes[0x30:0x32]),
			PhysicalLTrigger: readFloat(payloadBytes[0x32:0x36]),
			PhysicalRTrigger: readFloat(payloadBytes[0x36:0x3A]),
			XAnalogUCF:       payloadBytes[0x3A],
		}
	case PostFrameUpdate:
		payload = PostFrameUpdatePayload{
			FrameUpdate: FrameUpdate{
				FrameNumber:     int32(binary.BigEndian.Uint32(payloadBytes[0x0:0x4])),
				PlayerIndex:     payloadBytes[0x4],
				IsFollower:      payloadBytes[0x5] != 0,
				ActionStateID:   binary.BigEndian.Uint16(payloadBytes[0x7:0x9]),
				XPosition:       readFloat(payloadBytes[0x9:0xD]),
				YPosition:       readFloat(payloadBytes[0xD:0x11]),
				FacingDirection: readFloat(payloadBytes[0x11:0x15]),
				Percent:         readFloat(payloadBytes[0x15:0x19]),
			},
			InternalCharacterID:     payloadBytes[0x6],
			ShieldSize:              readFloat(payloadBytes[0x19:0x1D]),
			LastHittingAttackID:     payloadBytes[0x1D],
			CurrentComboCount:       payloadBytes[0x1E],
			LastHitBy:               payloadBytes[0x1F],
			StocksRemaining:         payloadBytes[0x20],
			ActionStateFrameCounter: readFloat(payloadBytes[0x21:0x25]),
			StateBitFlags1:          payloadBytes[0x25],
			StateBitFlags2:          payloadBytes[0x26],
			StateBitFlags3:          payloadBytes[0x27],
			StateBitFlags4:          payloadBytes[0x28],
			StateBitFlags5:          payloadBytes[0x29],
			MiscAS:                  readFloat(payloadBytes[0x2A:0x2E]),
			Airborne:                payloadBytes[0x2E] != 0,
			LastGroundID:            binary.BigEndian.Uint16(payloadBytes[0x2F:0x31]),
			JumpsRemaining:          payloadBytes[0x31],
			LCancelStatus:           LCancelStatus(payloadBytes[0x32]),
			HurtboxCollisionState:   HurtboxCollisionState(payloadBytes[0x33]),
			SelfInducedAirXSpeed:    readFloat(payloadBytes[0x34:0x38]),
			SelfInducedYSpeed:       readFloat(payloadBytes[0x38:0x3C]),
			AttackBasedXSpeed:       readFloat(payloadBytes[0x3C:0x40]),
			AttackBasedYSpeed:       readFloat(payloadBytes[0x40:0x44]),
			SelfInducedGroundXSpeed: readFloat(payloadBytes[0x44:0x48]),
			HitlagFramesRemaining:   readFloat(payloadBytes[0x48:0x4C]),
			AnimationIndex:          binary.BigEndian.Uint32(payloadBytes[0x4C:0x50]),
		}
	case GameEnd:
		payload = GameEndPayload{
			GameEndMethod: GameEndMethod(payloadBytes[0x0]),
			LRASInitiator: int8(payloadBytes[0x1]),
		}
	case FrameStart:
		payload = FrameStartPayload{
			FrameNumber:       int32(binary.BigEndian.Uint32(payloadBytes[0x0:0x4])),
			RandomSeed:        binary.BigEndian.Uint32(payloadBytes[0x4:0x8]),
			SceneFrameCounter: binary.BigEndian.Uint32(payloadBytes[0x8:0xC]),
		}
	case ItemUpdate:
		payload = ItemUpdatePayload{
			FrameNumber:      int32(binary.BigEndian.Uint32(payloadBytes[0x0:0x4])),
			TypeID:           binary.BigEndian.Uint16(payloadBytes[0x4:0x6]),
			State:            payloadBytes[0x6],
			FacingDirection:  readFloat(payloadBytes[0x7:0xB]),
			XVelocity:        readFloat(payloadBytes[0xB:0xF]),
			YVelocity:        readFloat(payloadBytes[0xF:0x13]),
			XPosition:        readFloat(payloadBytes[0x13:0x17]),
			YPosition:        readFloat(payloadBytes[0x17:0x1B]),
			DamageTaken:      binary.BigEndian.Uint16(payloadBytes[0x1B:0x1D]),
			ExpirationTimer:  readFloat(payloadBytes[0x1D:0x21]),
			SpawnID:          binary.BigEndian.Uint32(payloadBytes[0x21:0x25]),
			SamusMissileType: payloadBytes[0x25],
			PeachTurnipFace:  payloadBytes[0x26],
			IsLaunched:       payloadBytes[0x27],
			ChargedPower:     payloadBytes[0x28],
			Owner:            int8(payloadBytes[0x29]),
		}
	case FrameBookend:
		payload = FrameBookendPayload{
			FrameNumber:          int32(binary.BigEndian.Uint32(payloadBytes[0x0:0x4])),
			LatestFinalizedFrame: int32(binary.BigEndian.Uint32(payloadBytes[0x4:0x8])),
		}
	case GeckoList:
		payload = GeckoListPayload{GeckoCodes: payloadBytes}
	default:
		// Unknown-but-declared commands (e.g. future event types) are passed
		// through as raw bytes rather than failing the analyzer; the codec
		// itself never needs to understand them.
		payload = RawPayload{Bytes: payloadBytes}
	}

	return &SlpEvent{Command: command, Payload: payload}, nil
}

// RawPayload wraps the undecoded payload bytes of a command the analyzer
// does not know the structure of.
type RawPayload struct {
	Bytes []byte
}

func decodeGameStart(payloadBytes []byte) (*GameStartPayload, error) {
	getPlayerData := func(playerIndex int) (*PlayerInfo, error) {
		nametagOffset := 0x10 * playerIndex
		nametag, err := decodeShiftJIS(payloadBytes[0x160+nametagOffset : 0x170+nametagOffset])
		if err != nil {
			return nil, err
		}

		displayNameOffset := 0x1F * playerIndex
		displayName, err := decodeShiftJIS(payloadBytes[0x1A4+displayNameOffset : 0x1C3+displayNameOffset])
		if err != nil {
			return nil, err
		}

		connectCodeOffset := 0xA * playerIndex
		connectCode, err := decodeShiftJIS(payloadBytes[0x220+connectCodeOffset : 0x22B+connectCodeOffset])
		if err != nil {
			return nil, err
		}

		gameInfoOffset := 0x24 * playerIndex
		slippiUIDOffset := 0x1D * playerIndex
		fixOffset := 0x8 * playerIndex

		return &PlayerInfo{
			Index:           uint8(playerIndex),
			CharacterID:     payloadBytes[0x64+gameInfoOffset],
			PlayerType:      PlayerType(payloadBytes[0x65+gameInfoOffset]),
			StockStartCount: payloadBytes[0x66+gameInfoOffset],
			CostumeIndex:    payloadBytes[0x67+gameInfoOffset],
			TeamShade:       TeamShade(payloadBytes[0x6B+gameInfoOffset]),
			Handicap:        payloadBytes[0x6C+gameInfoOffset],
			TeamID:          TeamID(payloadBytes[0x6D+gameInfoOffset]),
			PlayerBitfield:  payloadBytes[0x70+gameInfoOffset],
			CPULevel:        payloadBytes[0x73+gameInfoOffset],
			OffenseRatio:    readFloat(payloadBytes[0x7C+gameInfoOffset : 0x80+gameInfoOffset]),
			DefenseRatio:    readFloat(payloadBytes[0x80+gameInfoOffset : 0x84+gameInfoOffset]),
			ModelScale:      readFloat(payloadBytes[0x84+gameInfoOffset : 0x88+gameInfoOffset]),
			DashbackFix:     DashbackFix(binary.BigEndian.Uint32(payloadBytes[0x140+fixOffset : 0x144+fixOffset])),
			ShieldDropFix:   ShieldDropFix(binary.BigEndian.Uint32(payloadBytes[0x144+fixOffset : 0x148+fixOffset])),
			Nametag:         nametag,
			DisplayName:     displayName,
			ConnectCode:     connectCode,
			SlippiUID:       string(nullTerminate(payloadBytes[0x248+slippiUIDOffset : 0x265+slippiUIDOffset])),
		}, nil
	}

	var players [4]PlayerInfo
	for i := 0; i < 4; i++ {
		playerInfo, err := getPlayerData(i)
		if err != nil {
			return nil, err
		}
		players[i] = *playerInfo
	}

	version := semver.Version{
		Major: uint64(payloadBytes[0]),
		Minor: uint64(payloadBytes[1]),
		Patch: uint64(payloadBytes[2]),
	}

	return &GameStartPayload{
		Version: version,
		GameInfoBlock: GameInfoBlock{
			GameBitfield1:          payloadBytes[0x4],
			GameBitfield2:          payloadBytes[0x5],
			GameBitfield3:          payloadBytes[0x6],
			GameBitfield4:          payloadBytes[0x7],
			BombRain:               payloadBytes[0xA],
			IsTeams:                payloadBytes[0xC] != 0,
			ItemSpawnBehavior:      ItemSpawnBehavior(payloadBytes[0xF]),
			SelfDestructScoreValue: int8(payloadBytes[0x10]),
			Stage:                  binary.BigEndian.Uint16(payloadBytes[0x12:0x14]),
			GameTimer:              binary.BigEndian.Uint32(payloadBytes[0x14:0x18]),
			ItemSpawnBitfield1:     payloadBytes[0x27],
			ItemSpawnBitfield2:     payloadBytes[0x28],
			ItemSpawnBitfield3:     payloadBytes[0x29],
			ItemSpawnBitfield4:     payloadBytes[0x2A],
			ItemSpawnBitfield5:     payloadBytes[0x2B],
			DamageRatio:            readFloat(payloadBytes[0x34:0x38]),
		},
		Players:        players,
		RandomSeed:     binary.BigEndian.Uint32(payloadBytes[0x13C:0x140]),
		PAL:            payloadBytes[0x1A0] != 0,
		FrozenPS:       payloadBytes[0x1A1] != 0,
		MinorScene:     payloadBytes[0x1A2],
		MajorScene:     payloadBytes[0x1A3],
		LanguageOption: Language(payloadBytes[0x2BC]),
	}, nil
}

func readFloat(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

func decodeShiftJIS(b []byte) (string, error) {
	dst := make([]byte, 128)
	_, _, err := japanese.ShiftJIS.NewDecoder().Transform(dst, b, true)
	if err != nil {
		return "", err
	}
	return string(nullTerminate(dst)), nil
}

func nullTerminate(b []byte) []byte {
	for i, data := range b {
		if data == 0x0 {
			return b[:i]
		}
	}
	return b
}
