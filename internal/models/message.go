package models

import "time"

type MessageDirection string

const (
	DirectionIn  MessageDirection = "IN"  // from the patient
	DirectionOut MessageDirection = "OUT" // answer shown to the patient
)

// Message represents a message stored in the 'messages' table. Content is
// encrypted at rest with the session owner's data key. An OUT message is
// one-to-one with the AiResponse that answers its IN counterpart; IsSanitized
// marks OUT messages whose advice text was replaced by the low-risk notice.
type Message struct {
	ID               int64            `db:"id" json:"id"`
	SessionID        int64            `db:"session_id" json:"session_id"`
	Direction        MessageDirection `db:"direction" json:"direction"`
	ContentEncrypted string           `db:"content_encrypted" json:"-"`
	IsSanitized      bool             `db:"is_sanitized" json:"is_sanitized"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}
