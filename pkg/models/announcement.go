package models

import "time"

// AnnouncementKind distinguishes generated audio assets by purpose
type AnnouncementKind string

const (
	KindPrice          AnnouncementKind = "price"
	KindSustainability AnnouncementKind = "sustainability"
	KindQuickAlert     AnnouncementKind = "quick_alert"
	KindWelcome        AnnouncementKind = "welcome"
	KindClosing        AnnouncementKind = "closing"
)

// AssetRef points at a generated audio file. FileName embeds the kind and
// a millisecond timestamp, so two assets of different kinds generated in
// the same millisecond can never collide.
type AssetRef struct {
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Announcement is a short spoken script with an optional audio asset.
// The script is always present; audio is best-effort.
type Announcement struct {
	Kind        AnnouncementKind `json:"kind"`
	Script      string           `json:"script"`
	AudioHandle *AssetRef        `json:"audio_handle,omitempty"`
}
