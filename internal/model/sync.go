package model

// StudentSyncState is the student poll payload: the live activity for
// the subject if one exists, otherwise the latest shared summary. Quiz
// payloads are always the stripped consumer view.
type StudentSyncState struct {
	Active          *Activity `json:"active,omitempty"`
	TimeRemaining   int       `json:"time_remaining,omitempty"`
	AlreadyAnswered bool      `json:"already_answered"`
	SharedSummary   *Activity `json:"shared_summary,omitempty"`
}

// ViewerSyncState is the address-code viewer poll payload for
// presentation sessions.
type ViewerSyncState struct {
	Session *Session  `json:"session"`
	Current *Activity `json:"current,omitempty"`
	// StatusMarker changes on every content push; viewers compare it to
	// skip refetching unchanged state.
	StatusMarker string `json:"status_marker,omitempty"`
}
