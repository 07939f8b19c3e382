package handlers

import (
	"log/slog"

	"shortlink/internal/config"
	"shortlink/internal/services"
	"shortlink/internal/token"

	"gorm.io/gorm"
)

type Handler struct {
	cfg          config.Config
	logger       *slog.Logger
	db           *gorm.DB
	linkService  *services.LinkService
	auditService *services.AuditService
	qrService    *services.QRService
	tokenService *token.Service
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	linkService *services.LinkService,
	auditService *services.AuditService,
	qrService *services.QRService,
	tokenService *token.Service,
) *Handler {
	return &Handler{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		linkService:  linkService,
		auditService: auditService,
		qrService:    qrService,
		tokenService: tokenService,
	}
}
