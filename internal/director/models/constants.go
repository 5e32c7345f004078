package models

import "time"

// UserCookieName carries the user id between reconnects.
const UserCookieName = "godr4ft_user"

type GameMessageType string

// Client to server events.
const (
	JoinSession                GameMessageType = "joinSession"
	SetOptions                 GameMessageType = "setOptions"
	SetSeating                 GameMessageType = "setSeating"
	RandomizeSeating           GameMessageType = "randomizeSeating"
	SetCollection              GameMessageType = "setCollection"
	ParseCustomCardList        GameMessageType = "parseCustomCardList"
	UploadBoosters             GameMessageType = "uploadBoosters"
	StartDraft                 GameMessageType = "startDraft"
	StopDraft                  GameMessageType = "stopDraft"
	PickCard                   GameMessageType = "pickCard"
	WinstonDraftTakePile       GameMessageType = "winstonDraftTakePile"
	WinstonDraftSkipPile       GameMessageType = "winstonDraftSkipPile"
	GridDraftPick              GameMessageType = "gridDraftPick"
	ReplaceDisconnectedPlayers GameMessageType = "replaceDisconnectedPlayers"
)

// Server to client events. StartDraft is sent back to players as well.
const (
	Ack                GameMessageType = "ack"
	Notice             GameMessageType = "message"
	SessionUsers       GameMessageType = "sessionUsers"
	SessionOwner       GameMessageType = "sessionOwner"
	SessionOptions     GameMessageType = "sessionOptions"
	StartSpectating    GameMessageType = "startSpectating"
	DraftState         GameMessageType = "draftState"
	WinstonDraftSync   GameMessageType = "winstonDraftSync"
	GridDraftSync      GameMessageType = "gridDraftSync"
	RochesterDraftSync GameMessageType = "rochesterDraftSync"
	SetCardSelection   GameMessageType = "setCardSelection"
	RejoinDraft        GameMessageType = "rejoinDraft"
	UserDisconnected   GameMessageType = "userDisconnected"
	Timer              GameMessageType = "timer"
	EndDraft           GameMessageType = "endDraft"
	DraftLog           GameMessageType = "draftLog"
)

const ChannelBufSize = 100

const (
	// Time allowed to write a message to the peer
	WriteWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	PongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait
	PingPeriod = (PongWait * 9) / 10

	// Maximum message size allowed from peer. Custom card lists and
	// collections are uploaded over the socket.
	MaxMessageSize = 1 << 20
)
