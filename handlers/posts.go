package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/collection"
	"github.com/petloc/petloc/pkg/logger"
)

const postsCollection = "posts"

// PostsHandler serves the community feed backed by the collection store.
type PostsHandler struct {
	store collection.Store
}

func NewPostsHandler(store collection.Store) *PostsHandler {
	return &PostsHandler{store: store}
}

func (h *PostsHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/posts")
	p.GET("", h.List)
	p.POST("", h.Create)
	p.POST("/:id/like", h.Like)
}

func (h *PostsHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.DELETE("/posts/:id", h.Delete)
}

// List returns the feed newest first; ?categoria= filters.
func (h *PostsHandler) List(c *gin.Context) {
	filter := map[string]interface{}{}
	if cat := c.Query("categoria"); cat != "" && cat != "todos" {
		filter["categoria"] = cat
	}
	docs, err := h.store.Find(c.Request.Context(), postsCollection, filter)
	if err != nil {
		logger.Errorf("list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": docsView(docs)})
}

func (h *PostsHandler) Create(c *gin.Context) {
	var req struct {
		Autor     string `json:"autor"`
		Categoria string `json:"categoria"`
		Conteudo  string `json:"conteudo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Conteudo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	if req.Categoria == "" {
		req.Categoria = "geral"
	}
	fields := map[string]interface{}{
		"autor":     req.Autor,
		"categoria": req.Categoria,
		"conteudo":  req.Conteudo,
		"likes":     0,
	}
	if sub := c.GetString("sub"); sub != "" {
		fields["userId"] = sub
	}
	id, err := h.store.Add(c.Request.Context(), postsCollection, fields)
	if err != nil {
		logger.Errorf("create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Like increments the post's like counter. Read-modify-write is good enough
// for the feed; likes are not money.
func (h *PostsHandler) Like(c *gin.Context) {
	id := c.Param("id")
	docs, err := h.store.Find(c.Request.Context(), postsCollection, map[string]interface{}{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if len(docs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post não encontrado"})
		return
	}
	likes := 0
	switch v := docs[0].Fields["likes"].(type) {
	case int:
		likes = v
	case int32:
		likes = int(v)
	case int64:
		likes = int(v)
	case float64:
		likes = int(v)
	}
	err = h.store.Update(c.Request.Context(), postsCollection, id, map[string]interface{}{"likes": likes + 1})
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes + 1})
}

func (h *PostsHandler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), postsCollection, c.Param("id"))
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.Status(http.StatusNoContent)
}
