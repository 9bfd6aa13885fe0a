package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/cart"
	"github.com/petloc/petloc/internal/catalog"
	"github.com/petloc/petloc/pkg/logger"
)

// CartHandler serves the signed-in user's cart. A cart service is built per
// request around the caller's id, loaded once from the repository.
type CartHandler struct {
	repo    cart.Repository
	catalog *catalog.Service
}

func NewCartHandler(repo cart.Repository, cat *catalog.Service) *CartHandler {
	return &CartHandler{repo: repo, catalog: cat}
}

// Register routes under /cart; callers wrap the group with auth middleware.
func (h *CartHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/cart")
	g.GET("", h.Get)
	g.POST("", h.Add)
	g.PATCH("/:itemId", h.UpdateQuantity)
	g.DELETE("/:itemId", h.Remove)
	g.DELETE("", h.Clear)
}

func (h *CartHandler) service(c *gin.Context) (*cart.Service, bool) {
	svc := cart.NewService(h.repo, c.GetString("sub"))
	if err := svc.Load(c.Request.Context()); err != nil {
		logger.Errorf("cart load: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return nil, false
	}
	return svc, true
}

func cartView(svc *cart.Service) gin.H {
	return gin.H{
		"items":      svc.Items(),
		"total":      svc.Total(),
		"quantidade": svc.ItemCount(),
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartView(svc))
}

// Add puts a product in the cart; a second add of the same product bumps its
// quantity instead of creating a duplicate line.
func (h *CartHandler) Add(c *gin.Context) {
	var req struct {
		ProdutoID string `json:"produtoId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ProdutoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), req.ProdutoID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Produto não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	svc, ok := h.service(c)
	if !ok {
		return
	}
	if err := svc.AddToCart(c.Request.Context(), cart.Product{
		ID: p.ID, Nome: p.Nome, Preco: p.Preco, Imagem: p.Imagem,
	}); err != nil {
		logger.Errorf("cart add: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, cartView(svc))
}

// UpdateQuantity sets the exact quantity; zero or less removes the item.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req struct {
		Quantidade int `json:"quantidade"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	svc, ok := h.service(c)
	if !ok {
		return
	}
	if err := svc.UpdateQuantity(c.Request.Context(), c.Param("itemId"), req.Quantidade); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, cartView(svc))
}

func (h *CartHandler) Remove(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	if err := svc.RemoveFromCart(c.Request.Context(), c.Param("itemId")); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Item não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, cartView(svc))
}

// Clear empties the cart. Items whose delete failed stay in the cart and are
// reported back so the client can retry.
func (h *CartHandler) Clear(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	failed, err := svc.ClearCart(c.Request.Context())
	if err != nil {
		logger.Warnf("cart clear left %d items: %v", len(failed), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":        "Não foi possível remover todos os itens",
			"itensRestantes": failed,
		})
		return
	}
	c.JSON(http.StatusOK, cartView(svc))
}
