package domain

import (
	"encoding/base64"
	"strings"
	"time"
)

// UploadKind says which field an upload replaces or extends.
type UploadKind string

const (
	UploadMain       UploadKind = "main"
	UploadGallery    UploadKind = "gallery"
	UploadStoreCover UploadKind = "store_cover"
	UploadUserAvatar UploadKind = "user_avatar"
)

// DraftProductID is the entity id of a product that has not been listed yet.
// A main image uploaded for it is returned to the caller instead of applied.
const DraftProductID = "new"

// Valid reports whether k is a known kind.
func (k UploadKind) Valid() bool {
	switch k {
	case UploadMain, UploadGallery, UploadStoreCover, UploadUserAvatar:
		return true
	}
	return false
}

// UploadTarget names the field an upload will land in. EntityID is a product
// id for main and gallery and ignored for the other kinds.
type UploadTarget struct {
	Kind     UploadKind `json:"kind"`
	EntityID string     `json:"entity_id"`
}

// PendingUpload is the session's single outstanding upload.
type PendingUpload struct {
	Token     string       `json:"token"`
	Target    UploadTarget `json:"target"`
	CreatedAt time.Time    `json:"created_at"`
}

// DataURI encodes data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}
