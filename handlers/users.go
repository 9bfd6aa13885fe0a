package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/models"
	"github.com/petloc/petloc/internal/users"
	"github.com/petloc/petloc/pkg/logger"
)

// UsersHandler serves the admin user-management screen: listing accounts,
// creating them with an explicit role, editing, activating/deactivating and
// deleting. All routes are admin-only.
type UsersHandler struct {
	svc *users.Service
}

func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// RegisterAdmin registers the user-management routes; callers wrap the group
// with RequireAdmin.
func (h *UsersHandler) RegisterAdmin(rg *gin.RouterGroup) {
	u := rg.Group("/usuarios")
	u.GET("", h.List)
	u.POST("", h.Create)
	u.PATCH("/:id", h.Update)
	u.DELETE("/:id", h.Delete)
}

type adminUserRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Tipo     string `json:"tipo"`
	Ativo    *bool  `json:"ativo"`
}

// List returns all accounts, newest first; ?ativo=true|false filters by
// activation state.
func (h *UsersHandler) List(c *gin.Context) {
	us, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	out := make([]gin.H, 0, len(us))
	for _, u := range us {
		if f := c.Query("ativo"); f != "" && (f == "true") != u.Ativo {
			continue
		}
		out = append(out, adminUserView(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Create registers an account on behalf of an admin, honoring the requested
// tipo and ativo instead of the sign-up defaults.
func (h *UsersHandler) Create(c *gin.Context) {
	var req adminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Nome == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRegistroCamposObrigatorios})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSenhaFraca})
		return
	}
	ctx := c.Request.Context()
	u, err := h.svc.CreateAccount(ctx, req.Nome, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": msgEmailEmUso})
			return
		}
		logger.Errorf("admin create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if req.Tipo == models.TipoAdmin {
		if err := h.svc.SetTipo(ctx, u.ID, models.TipoAdmin); err != nil {
			logger.Errorf("admin create user %s: set tipo: %v", u.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
			return
		}
		u.Tipo = models.TipoAdmin
	}
	if req.Ativo != nil && !*req.Ativo {
		if err := h.svc.SetAtivo(ctx, u.ID, false); err != nil {
			logger.Errorf("admin create user %s: set ativo: %v", u.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
			return
		}
		u.Ativo = false
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Usuário criado com sucesso", "user": adminUserView(u)})
}

// Update applies a partial edit; only fields present in the body change.
// tipo must be "usuario" or "admin".
func (h *UsersHandler) Update(c *gin.Context) {
	var req adminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	u, err := h.svc.GetByID(ctx, id)
	if err != nil {
		logger.Errorf("admin get user %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Usuário não encontrado"})
		return
	}
	if req.Nome != "" {
		if err := h.svc.SetDisplayName(ctx, id, req.Nome); err != nil {
			logger.Errorf("admin update user %s: nome: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
			return
		}
	}
	if req.Tipo != "" {
		if err := h.svc.SetTipo(ctx, id, req.Tipo); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
			return
		}
	}
	if req.Ativo != nil {
		if err := h.svc.SetAtivo(ctx, id, *req.Ativo); err != nil {
			logger.Errorf("admin update user %s: ativo: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
			return
		}
	}
	u, err = h.svc.GetByID(ctx, id)
	if err != nil || u == nil {
		logger.Errorf("admin reload user %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuário atualizado com sucesso", "user": adminUserView(u)})
}

// Delete removes the account. Admins cannot delete themselves, which keeps at
// least the acting admin alive.
func (h *UsersHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == c.GetString("sub") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Não é possível excluir a própria conta"})
		return
	}
	u, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("admin get user %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Usuário não encontrado"})
		return
	}
	if err := h.svc.DeleteAccount(c.Request.Context(), id); err != nil {
		logger.Errorf("admin delete user %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.Status(http.StatusNoContent)
}

// adminUserView includes the management fields the admin screen edits, unlike
// the session userView which only carries the role label.
func adminUserView(u *models.User) gin.H {
	view := gin.H{
		"id":       u.ID,
		"nome":     u.Nome,
		"email":    u.Email,
		"tipo":     u.Tipo,
		"ativo":    u.Ativo,
		"criadoEm": u.CreatedAt,
	}
	if u.UltimoLogin != nil {
		view["ultimoLogin"] = u.UltimoLogin
	}
	return view
}
