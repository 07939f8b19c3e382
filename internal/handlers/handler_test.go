package handlers

import (
	"log/slog"
	"os"

	"shortlink/internal/config"
	"shortlink/internal/models"
	"shortlink/internal/services"
	"shortlink/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestHandler() (*Handler, *gorm.DB) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	db.AutoMigrate(&models.User{}, &models.Link{}, &models.Visit{}, &models.AuditLog{})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{
		JWTSecret: "test-secret-12345678901234567890123456789012",
	}

	audit := services.NewAuditService(db, logger)
	links := services.NewLinkService(db, audit)
	qr := services.NewQRService()
	tokens := token.NewService(cfg.JWTSecret)

	h := NewHandler(cfg, logger, db, links, audit, qr, tokens)
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter()
}
