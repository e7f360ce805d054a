package chat

import (
	"time"

	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
)

// Session is a persisted conversation owned by one user. ObjectName and
// Persona are fixed at creation; switching objects always opens a new session.
type Session struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	ObjectName string          `json:"objectName"`
	Title      string          `json:"title"`
	Persona    persona.Persona `json:"persona"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
