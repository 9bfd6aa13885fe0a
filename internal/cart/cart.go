package cart

import "time"

// CartItem is one line of a user's cart. At most one item exists per
// (userId, productId) pair; adding the same product again increments
// quantidade instead of duplicating the line.
type CartItem struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ProductID  string    `bson:"productId" json:"productId"`
	Nome       string    `bson:"nome" json:"nome"`
	Preco      float64   `bson:"preco" json:"preco"`
	Quantidade int       `bson:"quantidade" json:"quantidade"`
	Imagem     string    `bson:"imagem,omitempty" json:"imagem,omitempty"`
	OwnerID    string    `bson:"userId" json:"userId"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Product carries the fields AddToCart needs from the catalog. Stock is
// deliberately absent: this layer does not enforce stock limits.
type Product struct {
	ID     string
	Nome   string
	Preco  float64
	Imagem string
}
