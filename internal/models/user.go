package models

import "time"

// User represents an application account. JSON field names follow the
// frontend contract (nome/tipo), bson names follow the stored documents.
type User struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Nome         string     `bson:"nome" json:"nome"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	Tipo         string     `bson:"tipo" json:"tipo"` // "usuario" | "admin"
	Ativo        bool       `bson:"ativo" json:"ativo"`
	UltimoLogin  *time.Time `bson:"ultimoLogin,omitempty" json:"ultimoLogin,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"criadoEm"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"atualizadoEm"`
}

const (
	TipoUsuario = "usuario"
	TipoAdmin   = "admin"
)

// IsAdmin reports whether the account carries the admin role. This is the
// authoritative server-side check; any role cached on the client is advisory.
func (u *User) IsAdmin() bool { return u != nil && u.Tipo == TipoAdmin }
