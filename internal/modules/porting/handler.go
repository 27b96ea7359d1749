package porting

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/waylog/core/internal/config"
	"github.com/waylog/core/internal/middleware"
	"github.com/waylog/core/internal/pkg/assetstore"
	pkgredis "github.com/waylog/core/internal/pkg/redis"
	"github.com/waylog/core/internal/pkg/response"
)

// Handler exposes the data portability endpoints: full export, S3 export,
// destructive restore and the additive Polarsteps import.
type Handler struct {
	db     *gorm.DB
	rdb    *pkgredis.Client
	assets assetstore.Store
	cfg    *config.AppConfig
	log    *zap.Logger
}

func NewHandler(db *gorm.DB, rdb *pkgredis.Client, assets assetstore.Store, cfg *config.AppConfig, log *zap.Logger) *Handler {
	return &Handler{db: db, rdb: rdb, assets: assets, cfg: cfg, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	grp := rg.Group("/porting", authMW)
	grp.GET("/export", h.export)
	grp.POST("/export/s3", h.exportToS3)

	lock := middleware.ImportLock(h.rdb.Raw())
	grp.POST("/import", lock, h.importArchive)
	grp.POST("/import/polarsteps", lock, h.importPolarsteps)
}

// GET /porting/export
func (h *Handler) export(c *gin.Context) {
	userID := middleware.UserID(c)

	archivePath, err := h.buildExport(userID)
	if err != nil {
		h.log.Error("export failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c)
		return
	}
	defer os.Remove(archivePath)

	filename := fmt.Sprintf("waylog-export-%s.zip", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.File(archivePath)
}

// POST /porting/export/s3
func (h *Handler) exportToS3(c *gin.Context) {
	userID := middleware.UserID(c)

	uploader, err := newS3Uploader(h.cfg.S3)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	archivePath, err := h.buildExport(userID)
	if err != nil {
		h.log.Error("export failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c)
		return
	}
	defer os.Remove(archivePath)

	data, err := os.ReadFile(archivePath)
	if err != nil {
		h.log.Error("reading export archive failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("waylog-export-%s.zip", now.Format("2006-01-02T15-04-05"))
	key := renderObjectKey(h.cfg.S3.PathTemplate, filename, now)

	url, err := uploader.Upload(c.Request.Context(), key, data, "application/zip")
	if err != nil {
		h.log.Error("s3 upload failed", zap.String("key", key), zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"url": url, "key": key})
}

func (h *Handler) buildExport(userID string) (string, error) {
	doc, refs, err := NewExporter(h.db, h.log).Export(userID)
	if err != nil {
		return "", err
	}
	return BuildArchive(h.cfg.StagingDir(), doc, refs, h.assets, h.log)
}

// POST /porting/import
//
// Destructive. Requires a multipart `file` and `confirm=true`; both are
// validated before anything is touched.
func (h *Handler) importArchive(c *gin.Context) {
	userID := middleware.UserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	if c.PostForm("confirm") != "true" {
		response.BadRequestCode(c, "confirmation_required",
			"importing replaces all existing data; pass confirm=true to proceed")
		return
	}

	archivePath, err := h.stageUpload(file)
	if err != nil {
		h.log.Error("staging upload failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	defer os.Remove(archivePath)

	ar, err := OpenArchive(archivePath)
	if err != nil {
		h.rejectArchive(c, err)
		return
	}
	defer ar.Close()

	summary, err := NewRestorer(h.db, h.assets, h.log).Restore(userID, ar)
	if err != nil {
		h.log.Error("import failed, all changes rolled back",
			zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c)
		return
	}

	// Cached reads must not survive a restore that replaced the data
	// underneath them.
	if err := h.rdb.FlushDB(c.Request.Context()); err != nil {
		h.log.Warn("cache flush after import failed", zap.Error(err))
	}

	response.OK(c, gin.H{"created": summary})
}

// POST /porting/import/polarsteps
func (h *Handler) importPolarsteps(c *gin.Context) {
	userID := middleware.UserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}

	archivePath, err := h.stageUpload(file)
	if err != nil {
		h.log.Error("staging upload failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	defer os.Remove(archivePath)

	summary, err := NewPolarstepsImporter(h.db, h.assets, h.log).Import(userID, archivePath)
	if err != nil {
		h.rejectArchive(c, err)
		return
	}
	response.OK(c, gin.H{"created": summary})
}

// rejectArchive maps archive structure errors to 400s with stable codes;
// anything else is a server fault.
func (h *Handler) rejectArchive(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMalformedArchive):
		response.BadRequestCode(c, "malformed_archive", "the uploaded file is not a readable archive")
	case errors.Is(err, ErrMissingDocument):
		response.BadRequestCode(c, "missing_document", "the archive does not contain the expected data document")
	case errors.Is(err, ErrMalformedDocument):
		response.BadRequestCode(c, "malformed_document", "the archive's data document could not be parsed")
	default:
		h.log.Error("archive processing failed", zap.Error(err))
		response.InternalError(c)
	}
}

// stageUpload copies the multipart upload into the staging directory so it
// can be opened as a random-access zip.
func (h *Handler) stageUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.cfg.StagingDir(), "waylog-import-*"+filepath.Ext(file.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
