package models

type SessionUser struct {
	UserID       string `json:"userID"`
	UserName     string `json:"userName"`
	IsBot        bool   `json:"isBot,omitempty"`
	Disconnected bool   `json:"disconnected,omitempty"`
	Spectator    bool   `json:"spectator,omitempty"`
}

type SessionOwnerPayload struct {
	Owner string `json:"owner"`
}

type DisconnectedPayload struct {
	UserID   string `json:"userID"`
	UserName string `json:"userName"`
}

type JoinSessionRequest struct {
	SessionID string `json:"sessionID"`
}

type SeatingRequest struct {
	Order []string `json:"order"`
}

type CollectionRequest struct {
	Collection map[string]int `json:"collection"`
}

type CustomListRequest struct {
	Text string `json:"text"`
}

type UploadBoostersRequest struct {
	Boosters [][]string `json:"boosters"`
}

type PickRequest struct {
	Picks []int `json:"picks"`
	Burns []int `json:"burns"`
}

type GridPickRequest struct {
	Choice int `json:"choice"`
}
