package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/collection"
	"github.com/petloc/petloc/pkg/logger"
)

const (
	petsCollection      = "pets-perdidos"
	ownedPetsCollection = "pets"
)

// PetsHandler serves lost-pet reports backed by the collection store.
type PetsHandler struct {
	store collection.Store
}

func NewPetsHandler(store collection.Store) *PetsHandler {
	return &PetsHandler{store: store}
}

// Register routes under /pets-perdidos. Reporting and status updates are open
// to signed-in users; removal is admin-only and registered separately.
func (h *PetsHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/pets-perdidos")
	p.GET("", h.List)
	p.POST("", h.Report)
	p.PATCH("/:id/status", h.UpdateStatus)
}

func (h *PetsHandler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.DELETE("/pets-perdidos/:id", h.Delete)
}

// RegisterOwned registers the signed-in pet registry backing the dashboard's
// "Meus Pets" tab. Distinct from lost-pet reports: these are the user's own
// animals, keyed by donoId.
func (h *PetsHandler) RegisterOwned(rg *gin.RouterGroup) {
	p := rg.Group("/pets")
	p.GET("", h.ListMine)
	p.POST("", h.AddPet)
	p.DELETE("/:id", h.DeletePet)
}

// petReport mirrors the report form.
type petReport struct {
	Nome         string  `json:"nome"`
	Especie      string  `json:"especie"`
	Raca         string  `json:"raca"`
	Cor          string  `json:"cor"`
	Tamanho      string  `json:"tamanho"`
	LocalPerdido string  `json:"localPerdido"`
	DataPerdido  string  `json:"dataPerdido"`
	Descricao    string  `json:"descricao"`
	Contato      string  `json:"contato"`
	Recompensa   float64 `json:"recompensa"`
	Imagem       string  `json:"imagem"`
}

// List returns all reports, newest first; ?status=perdido|encontrado filters.
func (h *PetsHandler) List(c *gin.Context) {
	filter := map[string]interface{}{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	docs, err := h.store.Find(c.Request.Context(), petsCollection, filter)
	if err != nil {
		logger.Errorf("list lost pets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pets": docsView(docs)})
}

// Report files a new lost-pet report with status "perdido".
func (h *PetsHandler) Report(c *gin.Context) {
	var req petReport
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.Nome == "" || req.LocalPerdido == "" || req.DataPerdido == "" || req.Contato == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Por favor, preencha todos os campos obrigatórios."})
		return
	}
	fields := map[string]interface{}{
		"nome":         req.Nome,
		"especie":      req.Especie,
		"raca":         req.Raca,
		"cor":          req.Cor,
		"tamanho":      req.Tamanho,
		"localPerdido": req.LocalPerdido,
		"dataPerdido":  req.DataPerdido,
		"descricao":    req.Descricao,
		"contato":      req.Contato,
		"imagem":       req.Imagem,
		"status":       "perdido",
	}
	if req.Recompensa > 0 {
		fields["recompensa"] = req.Recompensa
	}
	if sub := c.GetString("sub"); sub != "" {
		fields["userId"] = sub
	}
	id, err := h.store.Add(c.Request.Context(), petsCollection, fields)
	if err != nil {
		logger.Errorf("report lost pet: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Pet perdido reportado com sucesso!"})
}

// UpdateStatus marks a report perdido or encontrado.
func (h *PetsHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Status != "perdido" && req.Status != "encontrado") {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequisicaoInvalida})
		return
	}
	err := h.store.Update(c.Request.Context(), petsCollection, c.Param("id"), map[string]interface{}{"status": req.Status})
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Registro não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status atualizado com sucesso"})
}

// ownedPet mirrors the add-pet form. Health fields are free text.
type ownedPet struct {
	Nome                 string `json:"nome"`
	Especie              string `json:"especie"`
	Raca                 string `json:"raca"`
	Cor                  string `json:"cor"`
	Tamanho              string `json:"tamanho"`
	Sexo                 string `json:"sexo"`
	Idade                *int   `json:"idade"`
	Descricao            string `json:"descricao"`
	Vacinas              string `json:"vacinas"`
	Castrado             bool   `json:"castrado"`
	Alergias             string `json:"alergias"`
	Medicamentos         string `json:"medicamentos"`
	Imagem               string `json:"imagem"`
	DisponivelParaAdocao bool   `json:"disponivelParaAdocao"`
}

// ListMine returns the signed-in user's pets, newest first.
func (h *PetsHandler) ListMine(c *gin.Context) {
	docs, err := h.store.Find(c.Request.Context(), ownedPetsCollection, map[string]interface{}{"donoId": c.GetString("sub")})
	if err != nil {
		logger.Errorf("list owned pets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pets": docsView(docs)})
}

// AddPet registers a pet under the signed-in owner with status "Ativo".
func (h *PetsHandler) AddPet(c *gin.Context) {
	var req ownedPet
	if err := c.ShouldBindJSON(&req); err != nil || req.Nome == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Por favor, preencha o nome do pet."})
		return
	}
	fields := map[string]interface{}{
		"nome":                 req.Nome,
		"especie":              req.Especie,
		"raca":                 req.Raca,
		"cor":                  req.Cor,
		"tamanho":              req.Tamanho,
		"sexo":                 req.Sexo,
		"descricao":            req.Descricao,
		"vacinas":              req.Vacinas,
		"castrado":             req.Castrado,
		"alergias":             req.Alergias,
		"medicamentos":         req.Medicamentos,
		"imagem":               req.Imagem,
		"donoId":               c.GetString("sub"),
		"status":               "Ativo",
		"disponivelParaAdocao": req.DisponivelParaAdocao,
	}
	if req.Idade != nil {
		fields["idade"] = *req.Idade
	}
	id, err := h.store.Add(c.Request.Context(), ownedPetsCollection, fields)
	if err != nil {
		logger.Errorf("add owned pet: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Pet adicionado com sucesso!"})
}

// DeletePet removes one of the signed-in user's pets. Other owners' pets are
// reported as not found rather than forbidden.
func (h *PetsHandler) DeletePet(c *gin.Context) {
	ctx := c.Request.Context()
	docs, err := h.store.Find(ctx, ownedPetsCollection, map[string]interface{}{"_id": c.Param("id"), "donoId": c.GetString("sub")})
	if err != nil {
		logger.Errorf("find owned pet %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	if len(docs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Registro não encontrado"})
		return
	}
	if err := h.store.Delete(ctx, ownedPetsCollection, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PetsHandler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), petsCollection, c.Param("id"))
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Registro não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.Status(http.StatusNoContent)
}

// docsView flattens Documents into id + fields maps for JSON responses.
func docsView(docs []collection.Document) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		m := map[string]interface{}{"id": d.ID}
		for k, v := range d.Fields {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}
