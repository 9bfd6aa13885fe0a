package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/storage"
	"github.com/petloc/petloc/pkg/logger"
)

const (
	// maxUploadBytes caps each individual file.
	maxUploadBytes = 10 << 20
	// maxUploadFiles caps the batch; forms upload at most a handful of images.
	maxUploadFiles = 5
)

// allowed upload destinations, keyed by the `pasta` form field
var uploadFolders = map[string]bool{
	"pets-perdidos": true,
	"produtos":      true,
	"posts":         true,
	"perfil":        true,
}

// UploadHandler accepts multipart image uploads and stores them via the
// uploader, returning the stored URLs in upload order.
type UploadHandler struct {
	uploader *storage.Uploader
}

func NewUploadHandler(up *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: up}
}

func (h *UploadHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", h.Upload)
}

// Upload stores every file in the "files" multipart field sequentially under
// the requested folder. Mixed success is not possible: the first failure
// aborts the whole batch.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadFiles*maxUploadBytes+1<<20)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Arquivo inválido ou muito grande"})
		return
	}
	folder := c.PostForm("pasta")
	if !uploadFolders[folder] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Pasta de destino inválida"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nenhum arquivo enviado"})
		return
	}
	if len(files) > maxUploadFiles {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Número máximo de arquivos excedido"})
		return
	}

	batch := make([]storage.File, 0, len(files))
	opened := make([]interface{ Close() error }, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range files {
		if fh.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Arquivo excede o tamanho máximo de 10MB"})
			return
		}
		name := path.Base(fh.Filename)
		if name == "" || name == "." || strings.ContainsAny(name, "/\\") {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Nome de arquivo inválido"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Arquivo inválido ou muito grande"})
			return
		}
		opened = append(opened, f)
		batch = append(batch, storage.File{
			Name:        name,
			Content:     f,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	urls, err := h.uploader.UploadMultipleFiles(c.Request.Context(), batch, folder)
	if err != nil {
		logger.Errorf("upload to %s failed: %v", folder, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgErroInterno})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}
