package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

// DocumentHandler serves the upload page and the document list.
type DocumentHandler struct {
	*Deps
	maxBytes int64
}

func NewDocumentHandler(d *Deps, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	return &DocumentHandler{Deps: d, maxBytes: maxBytes}
}

type UploadBody struct {
	Phase     view.Phase
	Error     string
	Documents []model.Document
	MaxMB     int64
}

type ConfirmBody struct {
	Heading string
	Message string
	Action  string
	Cancel  string
}

var (
	errNotPDF   = errors.New("not a pdf")
	errTooLarge = errors.New("file too large")
)

func documentID(d model.Document) string { return d.ID }

func (h *DocumentHandler) page(c *gin.Context, status int, banner *view.Banner, body UploadBody) {
	body.MaxMB = h.maxBytes >> 20
	render(c, status, "upload", web.Page{Title: "Documents", Nav: "upload", Banner: banner, Body: body})
}

// load is the mount read for the document list.
func (h *DocumentHandler) load(c *gin.Context) (UploadBody, bool) {
	user := currentUser(c)
	if user.CompanyID == "" {
		return UploadBody{Phase: view.Empty}, true
	}
	docs, err := h.API.ListDocuments(c.Request.Context(), token(c), user.CompanyID)
	if h.rejected(c, err) {
		return UploadBody{}, false
	}
	body := UploadBody{Phase: view.MountPhase(err), Documents: docs}
	if body.Phase == view.Error {
		body.Error = errorText(err)
	}
	return body, true
}

func (h *DocumentHandler) List(c *gin.Context) {
	body, ok := h.load(c)
	if !ok {
		return
	}
	h.page(c, http.StatusOK, nil, body)
}

// validateUpload checks the file before anything is sent to the backend.
func validateUpload(name string, size, limit int64) error {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return errNotPDF
	}
	if size > limit {
		return fmt.Errorf("%w: %s is %.1f MB, the limit is %d MB", errTooLarge, name, float64(size)/(1<<20), limit>>20)
	}
	return nil
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	// Allow a little room for multipart framing around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		msg := "Choose a PDF file to upload."
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			msg = fmt.Sprintf("File exceeds the %d MB limit.", h.maxBytes>>20)
		}
		h.page(c, http.StatusBadRequest, view.InfoBanner(msg), UploadBody{Phase: view.Loading})
		return
	}
	if err := validateUpload(fh.Filename, fh.Size, h.maxBytes); err != nil {
		logger.Info("upload.rejected", "file", fh.Filename, "size", fh.Size, "err", err)
		msg := "Only PDF files are accepted."
		if errors.Is(err, errTooLarge) {
			msg = fmt.Sprintf("File exceeds the %d MB limit.", h.maxBytes>>20)
		}
		h.page(c, http.StatusBadRequest, &view.Banner{Kind: view.BannerError, Message: msg}, UploadBody{Phase: view.Loading})
		return
	}

	release, ok := h.acquire(c, "upload", fh.Filename)
	if !ok {
		return
	}
	defer release()

	f, err := fh.Open()
	if err != nil {
		h.page(c, http.StatusBadRequest, view.ErrorBanner(err, "Could not read the uploaded file."), UploadBody{Phase: view.Loading})
		return
	}
	defer f.Close()

	doc, err := h.API.UploadDocument(c.Request.Context(), token(c), fh.Filename, f)
	if h.rejected(c, err) {
		return
	}
	var banner *view.Banner
	if err != nil {
		logger.Warn("upload.failed", "file", fh.Filename, "err", err)
		banner = view.ErrorBanner(err, "Upload failed.")
	} else {
		logger.Info("upload.ok", "file", fh.Filename, "doc", doc.ID)
		banner = view.SuccessBanner(fmt.Sprintf("Uploaded %s. Processing has started.", doc.FileName))
	}

	body, ok := h.load(c)
	if !ok {
		return
	}
	h.page(c, http.StatusOK, banner, body)
}

// Delete asks for confirmation first; only a confirmed POST reaches the backend.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if c.PostForm("confirm") != "yes" {
		render(c, http.StatusOK, "confirm", web.Page{Title: "Delete document", Nav: "upload", Body: ConfirmBody{
			Heading: "Delete document?",
			Message: "The document and all of its analyses will be removed. This cannot be undone.",
			Action:  "/documents/" + id + "/delete",
			Cancel:  "/upload",
		}})
		return
	}

	release, ok := h.acquire(c, "document.delete", id)
	if !ok {
		return
	}
	defer release()

	body, ok := h.load(c)
	if !ok {
		return
	}
	if body.Phase == view.Error {
		h.page(c, http.StatusOK, &view.Banner{Kind: view.BannerError, Message: body.Error}, body)
		return
	}

	err := h.API.DeleteDocument(c.Request.Context(), token(c), id)
	if h.rejected(c, err) {
		return
	}
	if err != nil {
		logger.Warn("document.delete.failed", "doc", id, "err", err)
		h.page(c, http.StatusOK, view.ErrorBanner(err, "Delete failed."), body)
		return
	}
	logger.Info("document.delete.ok", "doc", id)
	body.Documents = view.RemoveByID(body.Documents, id, documentID)
	h.page(c, http.StatusOK, view.SuccessBanner("Document deleted."), body)
}
