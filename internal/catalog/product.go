package catalog

import "time"

// Produto is a store item offered in the petloc marketplace.
type Produto struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Nome      string    `bson:"nome" json:"nome"`
	Descricao string    `bson:"descricao" json:"descricao"`
	Preco     float64   `bson:"preco" json:"preco"`
	Categoria string    `bson:"categoria" json:"categoria"`
	Estoque   int       `bson:"estoque" json:"estoque"`
	Ativo     bool      `bson:"ativo" json:"ativo"`
	Imagem    string    `bson:"imagem" json:"imagem"`
	CreatedAt time.Time `bson:"createdAt" json:"criadoEm"`
	UpdatedAt time.Time `bson:"updatedAt" json:"atualizadoEm"`
}
