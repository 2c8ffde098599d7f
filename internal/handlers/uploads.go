package handlers

import (
	"net/http"

	"propdesk/internal/storage"

	"github.com/gin-gonic/gin"
)

type UploadsHandler struct {
	Store *storage.LocalFS
}

func NewUploadsHandler(store *storage.LocalFS) *UploadsHandler {
	return &UploadsHandler{Store: store}
}

// Upload accepts a multipart file and returns its public URL.
func (h *UploadsHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	url, err := h.Store.Put(file.Filename, src)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "url": url})
}
