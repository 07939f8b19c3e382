package services

import (
	"errors"
	"strings"
	"time"

	"shortlink/internal/models"
	"shortlink/pkg/utils"

	"github.com/mssola/user_agent"
	"gorm.io/gorm"
)

var (
	// ErrTargetURLRequired is a validation failure, never fatal.
	ErrTargetURLRequired = errors.New("target URL is required")
	// ErrLinkNotFound covers both unknown codes and codes owned by
	// someone else, so a delete cannot confirm another user's link exists.
	ErrLinkNotFound = errors.New("link not found")
)

// VisitMeta carries the request attributes recorded with a visit.
type VisitMeta struct {
	UserAgent string
	Referrer  string
}

type StatCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type LinkAnalytics struct {
	TotalClicks int64          `json:"totalClicks"`
	History     []models.Visit `json:"analytics"`
	Browsers    []StatCount    `json:"browsers"`
	Systems     []StatCount    `json:"systems"`
	Devices     []StatCount    `json:"devices"`
	Referrers   []StatCount    `json:"referrers"`
}

type LinkService struct {
	db            *gorm.DB
	auditService  *AuditService
	codeGenerator func(int) string
}

func NewLinkService(db *gorm.DB, auditService *AuditService) *LinkService {
	return &LinkService{
		db:            db,
		auditService:  auditService,
		codeGenerator: utils.GenerateShortCode,
	}
}

// CreateShortLink persists a new link owned by ownerID with an empty
// visit history. Code uniqueness is backed by the store's unique index;
// the generate-and-check loop retries on the rare collision.
func (s *LinkService) CreateShortLink(ownerID uint, targetURL string, ip string) (*models.Link, error) {
	if strings.TrimSpace(targetURL) == "" {
		return nil, ErrTargetURLRequired
	}

	var shortCode string
	for {
		shortCode = s.codeGenerator(6)
		var existing models.Link
		err := s.db.Where("short_code = ?", shortCode).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	newLink := models.Link{
		UserID:    ownerID,
		ShortCode: shortCode,
		TargetURL: targetURL,
		CreatedAt: time.Now(),
	}

	if err := s.db.Create(&newLink).Error; err != nil {
		return nil, err
	}

	s.auditService.LogAction(&ownerID, "CREATE_LINK", newLink.ShortCode, map[string]interface{}{
		"target_url": targetURL,
	}, ip)

	return &newLink, nil
}

// ResolveAndRecordVisit returns the target URL for shortCode and appends
// one visit record. The append is a single INSERT, so concurrent visits
// to the same code each land their own row and none are lost. An unknown
// code leaves the store untouched.
func (s *LinkService) ResolveAndRecordVisit(shortCode string, meta VisitMeta) (string, error) {
	var link models.Link
	if err := s.db.Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrLinkNotFound
		}
		return "", err
	}

	visit := models.Visit{
		LinkID:    link.ID,
		Timestamp: time.Now(),
	}
	enrichVisit(&visit, meta)

	if err := s.db.Create(&visit).Error; err != nil {
		return "", err
	}

	return link.TargetURL, nil
}

// Analytics reports the click total, the full visit history in insertion
// order and a few aggregate breakdowns.
func (s *LinkService) Analytics(shortCode string) (*LinkAnalytics, error) {
	var link models.Link
	if err := s.db.Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	var history []models.Visit
	if err := s.db.Where("link_id = ?", link.ID).Order("id asc").Find(&history).Error; err != nil {
		return nil, err
	}

	result := &LinkAnalytics{
		TotalClicks: int64(len(history)),
		History:     history,
	}
	result.Browsers = s.countBy(link.ID, "browser")
	result.Systems = s.countBy(link.ID, "os")
	result.Devices = s.countBy(link.ID, "device_type")
	result.Referrers = s.countBy(link.ID, "referrer")

	return result, nil
}

// LinksForOwner returns every link owned by ownerID, newest first. An
// owner with no links gets an empty slice, not an error.
func (s *LinkService) LinksForOwner(ownerID uint) ([]models.Link, error) {
	links := []models.Link{}
	if err := s.db.Where("user_id = ?", ownerID).Order("created_at desc").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// LinkForOwner fetches one link scoped to its owner. As with DeleteLink,
// an ownership mismatch reads as ErrLinkNotFound.
func (s *LinkService) LinkForOwner(shortCode string, ownerID uint) (*models.Link, error) {
	var link models.Link
	if err := s.db.Where("short_code = ? AND user_id = ?", shortCode, ownerID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// DeleteLink removes the link only when ownerID matches. An ownership
// mismatch reports ErrLinkNotFound, indistinguishable from a code that
// never existed. Visit rows cascade.
func (s *LinkService) DeleteLink(shortCode string, ownerID uint, ip string) error {
	result := s.db.Where("short_code = ? AND user_id = ?", shortCode, ownerID).Delete(&models.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}

	s.auditService.LogAction(&ownerID, "DELETE_LINK", shortCode, nil, ip)
	return nil
}

func (s *LinkService) countBy(linkID uint, column string) []StatCount {
	var stats []StatCount
	s.db.Model(&models.Visit{}).
		Where("link_id = ?", linkID).
		Select(column + " as label, count(*) as count").
		Group(column).
		Order("count desc").
		Scan(&stats)
	return stats
}

func enrichVisit(visit *models.Visit, meta VisitMeta) {
	ua := user_agent.New(meta.UserAgent)
	browserName, browserVer := ua.Browser()
	visit.Browser = strings.TrimSpace(browserName + " " + browserVer)
	visit.OS = ua.OS()

	if ua.Mobile() {
		visit.DeviceType = "Mobile"
	} else if ua.Bot() {
		visit.DeviceType = "Bot"
	} else {
		visit.DeviceType = "Desktop"
	}

	if meta.Referrer != "" {
		visit.Referrer = meta.Referrer
	} else {
		visit.Referrer = "Direct"
	}
}
