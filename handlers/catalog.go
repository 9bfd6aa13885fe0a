package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/catalog"
	"github.com/petloc/petloc/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
)

// CatalogHandler serves the store catalog. Reads are public; writes are
// admin-only and registered separately.
type CatalogHandler struct {
	svc *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Register routes under /produtos (public storefront reads).
func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/produtos")
	p.GET("", h.List)
	p.GET("/:id", h.Get)
}

// RegisterAdmin registers the catalog write routes; callers wrap the group
// with RequireAdmin.
func (h *CatalogHandler) RegisterAdmin(rg *gin.RouterGroup) {
	p := rg.Group("/produtos")
	p.POST("", h.Create)
	p.PATCH("/:id", h.Update)
	p.PATCH("/:id/ativo", h.ToggleAtivo)
	p.DELETE("/:id", h.Delete)
}

// List returns active products; ?todos=true includes inactive ones.
func (h *CatalogHandler) List(c *gin.Context) {
	onlyAtivo := c.Query("todos") != "true"
	produtos, err := h.svc.ListProducts(c.Request.Context(), onlyAtivo)
	if err != nil {
		logger.Errorf("list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"produtos": produtos})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	p, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Produto não encontrado"})
			return
		}
		logger.Errorf("get product %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, p)
}

type productRequest struct {
	Nome      string  `json:"nome"`
	Descricao string  `json:"descricao"`
	Preco     float64 `json:"preco"`
	Categoria string  `json:"categoria"`
	Estoque   int     `json:"estoque"`
	Imagem    string  `json:"imagem"`
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Nome == "" || req.Preco <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Por favor, preencha todos os campos obrigatórios."})
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), &catalog.Produto{
		Nome:      req.Nome,
		Descricao: req.Descricao,
		Preco:     req.Preco,
		Categoria: req.Categoria,
		Estoque:   req.Estoque,
		Imagem:    req.Imagem,
		Ativo:     true,
	})
	if err != nil {
		logger.Errorf("create product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update applies a partial update; only fields present in the body change.
func (h *CatalogHandler) Update(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	set := bson.M{}
	for _, k := range []string{"nome", "descricao", "categoria", "imagem"} {
		if v, ok := req[k].(string); ok {
			set[k] = v
		}
	}
	if v, ok := req["preco"].(float64); ok {
		set["preco"] = v
	}
	if v, ok := req["estoque"].(float64); ok {
		set["estoque"] = int(v)
	}
	if v, ok := req["ativo"].(bool); ok {
		set["ativo"] = v
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	if err := h.svc.UpdateProduct(c.Request.Context(), c.Param("id"), set); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Produto não encontrado"})
			return
		}
		logger.Errorf("update product %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto atualizado com sucesso"})
}

// ToggleAtivo flips product visibility in the storefront.
func (h *CatalogHandler) ToggleAtivo(c *gin.Context) {
	var req struct {
		Ativo bool `json:"ativo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	if err := h.svc.UpdateProduct(c.Request.Context(), c.Param("id"), bson.M{"ativo": req.Ativo}); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Produto não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto atualizado com sucesso"})
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Produto não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.Status(http.StatusNoContent)
}
