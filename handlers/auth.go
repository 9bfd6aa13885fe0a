package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/config"
	"github.com/petloc/petloc/internal/identity"
	"github.com/petloc/petloc/internal/models"
	"github.com/petloc/petloc/internal/sessions"
	"github.com/petloc/petloc/internal/tokens"
	"github.com/petloc/petloc/internal/users"
	"github.com/petloc/petloc/pkg/logger"
)

// Portuguese user-facing messages returned by the auth endpoints.
const (
	msgCamposObrigatorios         = "Email e senha são obrigatórios"
	msgRegistroCamposObrigatorios = "Nome, email e senha são obrigatórios"
	msgCredenciaisInvalidas       = "Credenciais inválidas"
	msgMuitasTentativas           = "Muitas tentativas. Tente novamente mais tarde."
	msgErroInterno                = "Erro interno do servidor"
	msgEmailEmUso                 = "Este email já está em uso"
	msgSenhaFraca                 = "Senha muito fraca"
	msgRequisicaoInvalida         = "Requisição inválida"
	msgLoginOK                    = "Login realizado com sucesso"
	msgContaCriada                = "Conta criada com sucesso"
)

// LoginRequest is the browser login payload. isAdmin only expresses that the
// admin panel was requested; the role in the response always comes from the
// stored account, never from this flag.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// RegisterRequest is the browser sign-up payload.
type RegisterRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	cfg         *config.Config
	hook        *identity.SessionHook
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, hook *identity.SessionHook, u *users.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, hook: hook, usersSvc: u, sessionsSvc: s}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/register", h.SignUp)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// RegisterProtected registers routes that require a valid access token.
func (h *AuthHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
}

// Login authenticates email/password and returns the user plus tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgCamposObrigatorios})
		return
	}

	u, err := h.hook.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredential):
			c.JSON(http.StatusUnauthorized, gin.H{"message": msgCredenciaisInvalidas})
		case errors.Is(err, identity.ErrTooManyRequests):
			c.JSON(http.StatusTooManyRequests, gin.H{"message": msgMuitasTentativas})
		default:
			logger.Errorf("login failed for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		}
		return
	}

	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session for %s: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to create access token for %s: %v", u.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      msgLoginOK,
		"user":         userView(u),
		"token":        access,
		"refreshToken": rft,
	})
}

// SignUp creates the account, then sets the display name. The two steps are
// atomic from the client's view: a display-name failure removes the account.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Nome == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRegistroCamposObrigatorios})
		return
	}

	u, err := h.hook.Register(c.Request.Context(), req.Nome, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"message": msgEmailEmUso})
		case errors.Is(err, identity.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgSenhaFraca})
		default:
			logger.Errorf("register failed for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msgContaCriada,
		"user":    userView(u),
	})
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		logger.Errorf("refresh validation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgCredenciaisInvalidas})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), sess.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "expiresIn": int(h.cfg.JWT.AccessTokenTTL.Seconds())})
}

// Logout invalidates the refresh token and blacklists the presented access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}

	if at := bearerToken(c); at != "" {
		if exp, err := tokens.ParseExp(at); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				if err := sessions.BlacklistAccessToken(c.Request.Context(), at, ttl); err != nil {
					logger.Warnf("access token blacklist failed: %v", err)
				}
			}
		}
	}

	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if err := h.hook.Logout(c.Request.Context()); err != nil {
		logger.Warnf("session hook logout: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout realizado com sucesso"})
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	sub := c.GetString("sub")
	if sub == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgCredenciaisInvalidas})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Usuário não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userView(u)})
}

// userView is the browser-facing user shape. Role always reflects the stored
// account tipo.
func userView(u *models.User) gin.H {
	role := "user"
	if u.IsAdmin() {
		role = "admin"
	}
	return gin.H{
		"id":    u.ID,
		"nome":  u.Nome,
		"email": u.Email,
		"role":  role,
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
