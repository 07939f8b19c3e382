package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"shortlink/internal/models"
	"shortlink/pkg/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	err = db.AutoMigrate(&models.User{}, &models.Link{}, &models.Visit{}, &models.AuditLog{})
	if err != nil {
		panic("failed to migrate database: " + err.Error())
	}
	return db
}

func setupLinkService(db *gorm.DB) *LinkService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	audit := NewAuditService(db, logger)
	return NewLinkService(db, audit)
}

func createTestUser(db *gorm.DB, email string) models.User {
	user := models.User{Name: "Test", Email: email, PasswordHash: "x"}
	db.Create(&user)
	return user
}

func TestCreateShortLink(t *testing.T) {
	db := setupTestDB()
	service := setupLinkService(db)
	user := createTestUser(db, "create@x.com")

	t.Run("Create Link", func(t *testing.T) {
		link, err := service.CreateShortLink(user.ID, "https://example.com", "127.0.0.1")

		assert.NoError(t, err)
		assert.Len(t, link.ShortCode, 6)
		assert.Equal(t, "https://example.com", link.TargetURL)
		assert.Equal(t, user.ID, link.UserID)

		var visits int64
		db.Model(&models.Visit{}).Where("link_id = ?", link.ID).Count(&visits)
		assert.Zero(t, visits)
	})

	t.Run("Missing Target URL", func(t *testing.T) {
		_, err := service.CreateShortLink(user.ID, "  ", "127.0.0.1")
		assert.ErrorIs(t, err, ErrTargetURLRequired)
	})

	t.Run("Codes Are Unique Across Calls", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			link, err := service.CreateShortLink(user.ID, "https://example.com/page", "127.0.0.1")
			assert.NoError(t, err)
			assert.False(t, seen[link.ShortCode])
			seen[link.ShortCode] = true
		}
	})

	t.Run("Collision Retry", func(t *testing.T) {
		calls := 0
		service.codeGenerator = func(int) string {
			calls++
			if calls == 1 {
				return "CLASH1"
			}
			return "FRESH1"
		}
		defer func() { service.codeGenerator = utils.GenerateShortCode }()

		db.Create(&models.Link{UserID: user.ID, ShortCode: "CLASH1", TargetURL: "https://a.com"})

		link, err := service.CreateShortLink(user.ID, "https://b.com", "127.0.0.1")

		assert.NoError(t, err)
		assert.Equal(t, "FRESH1", link.ShortCode)
		assert.Equal(t, 2, calls)
	})

	t.Run("DB Create Error", func(t *testing.T) {
		dbErr := setupTestDB()
		dbErr.Migrator().DropTable(&models.Link{})
		serviceErr := setupLinkService(dbErr)

		_, err := serviceErr.CreateShortLink(user.ID, "https://example.com", "127.0.0.1")
		assert.Error(t, err)
	})
}

func TestResolveAndRecordVisit(t *testing.T) {
	db := setupTestDB()
	service := setupLinkService(db)
	user := createTestUser(db, "resolve@x.com")

	t.Run("Resolve Records Visit", func(t *testing.T) {
		link, _ := service.CreateShortLink(user.ID, "https://example.com", "127.0.0.1")

		target, err := service.ResolveAndRecordVisit(link.ShortCode, VisitMeta{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			Referrer:  "https://news.ycombinator.com",
		})

		assert.NoError(t, err)
		assert.Equal(t, "https://example.com", target)

		var visits []models.Visit
		db.Where("link_id = ?", link.ID).Find(&visits)
		assert.Len(t, visits, 1)
		assert.Contains(t, visits[0].Browser, "Chrome")
		assert.Equal(t, "Desktop", visits[0].DeviceType)
		assert.Equal(t, "https://news.ycombinator.com", visits[0].Referrer)
	})

	t.Run("Empty Referrer Defaults To Direct", func(t *testing.T) {
		link, _ := service.CreateShortLink(user.ID, "https://example.org", "127.0.0.1")

		_, err := service.ResolveAndRecordVisit(link.ShortCode, VisitMeta{})
		assert.NoError(t, err)

		var visit models.Visit
		db.Where("link_id = ?", link.ID).First(&visit)
		assert.Equal(t, "Direct", visit.Referrer)
	})

	t.Run("Unknown Code Does Not Mutate Store", func(t *testing.T) {
		var before int64
		db.Model(&models.Visit{}).Count(&before)

		_, err := service.ResolveAndRecordVisit("NOPE99", VisitMeta{})
		assert.ErrorIs(t, err, ErrLinkNotFound)

		var after int64
		db.Model(&models.Visit{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Sequential Visits Keep Full History", func(t *testing.T) {
		link, _ := service.CreateShortLink(user.ID, "https://example.net", "127.0.0.1")

		for i := 0; i < 10; i++ {
			_, err := service.ResolveAndRecordVisit(link.ShortCode, VisitMeta{})
			assert.NoError(t, err)
		}

		var count int64
		db.Model(&models.Visit{}).Where("link_id = ?", link.ID).Count(&count)
		assert.Equal(t, int64(10), count)
	})

	t.Run("Concurrent Visits Lose No Entries", func(t *testing.T) {
		// File-backed DB so concurrent writers exercise real locking.
		fileDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "visits.db")), &gorm.Config{})
		assert.NoError(t, err)
		assert.NoError(t, fileDB.AutoMigrate(&models.User{}, &models.Link{}, &models.Visit{}, &models.AuditLog{}))
		service := setupLinkService(fileDB)
		db := fileDB

		link, _ := service.CreateShortLink(user.ID, "https://example.io", "127.0.0.1")

		const visitors = 8
		var wg sync.WaitGroup
		errs := make(chan error, visitors)
		for i := 0; i < visitors; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.ResolveAndRecordVisit(link.ShortCode, VisitMeta{})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		var count int64
		db.Model(&models.Visit{}).Where("link_id = ?", link.ID).Count(&count)
		assert.Equal(t, int64(visitors), count)
	})
}

func TestAnalytics(t *testing.T) {
	db := setupTestDB()
	service := setupLinkService(db)
	user := createTestUser(db, "analytics@x.com")

	t.Run("Unknown Code", func(t *testing.T) {
		_, err := service.Analytics("MISSING")
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})

	t.Run("Empty History", func(t *testing.T) {
		link, _ := service.CreateShortLink(user.ID, "https://quiet.example", "127.0.0.1")

		stats, err := service.Analytics(link.ShortCode)
		assert.NoError(t, err)
		assert.Zero(t, stats.TotalClicks)
		assert.Empty(t, stats.History)
	})

	t.Run("Counts And Ordered History", func(t *testing.T) {
		link, _ := service.CreateShortLink(user.ID, "https://busy.example", "127.0.0.1")

		agents := []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		}
		for _, ua := range agents {
			_, err := service.ResolveAndRecordVisit(link.ShortCode, VisitMeta{UserAgent: ua})
			assert.NoError(t, err)
		}

		stats, err := service.Analytics(link.ShortCode)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalClicks)
		assert.Len(t, stats.History, 3)
		for i := 1; i < len(stats.History); i++ {
			assert.GreaterOrEqual(t, stats.History[i].ID, stats.History[i-1].ID)
		}
		assert.NotEmpty(t, stats.Devices)
		assert.NotEmpty(t, stats.Browsers)
	})
}

func TestLinksForOwner(t *testing.T) {
	db := setupTestDB()
	service := setupLinkService(db)
	owner := createTestUser(db, "owner@x.com")
	other := createTestUser(db, "other@x.com")

	t.Run("Empty For Fresh User", func(t *testing.T) {
		links, err := service.LinksForOwner(owner.ID)
		assert.NoError(t, err)
		assert.NotNil(t, links)
		assert.Empty(t, links)
	})

	t.Run("Only Own Links", func(t *testing.T) {
		service.CreateShortLink(owner.ID, "https://mine.example/1", "127.0.0.1")
		service.CreateShortLink(owner.ID, "https://mine.example/2", "127.0.0.1")
		service.CreateShortLink(other.ID, "https://theirs.example", "127.0.0.1")

		links, err := service.LinksForOwner(owner.ID)
		assert.NoError(t, err)
		assert.Len(t, links, 2)
		for _, l := range links {
			assert.Equal(t, owner.ID, l.UserID)
		}
	})
}

func TestLinkForOwner(t *testing.T) {
	db := setupTestDB()
	service := setupLinkService(db)
	owner := createTestUser(db, "fetch-owner@x.com")
	stranger := createTestUser(db, "fetch-stranger@x.com")

	created, _ := service.CreateShortLink(owner.ID, "https://fetch.example", "127.0.0.1")

	t.Run("Owner Fetches Own Link", func(t *testing.T) {
		link, err := service.LinkForOwner(created.ShortCode, owner.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, link.ID)
		assert.Equal(t, "https://fetch.example", link.TargetURL)
	})

	t.Run("Non-Owner Looks Like Not Found", func(t *testing.T) {
		_, errStranger := service.LinkForOwner(created.ShortCode, stranger.ID)
		_, errMissing := service.LinkForOwner("NEVER2", stranger.ID)

		assert.ErrorIs(t, errStranger, ErrLinkNotFound)
		assert.ErrorIs(t, errMissing, ErrLinkNotFound)
	})
}

func TestDeleteLink(t *testing.T) {
	db := setupTestDB()
	service := setupLinkService(db)
	owner := createTestUser(db, "del-owner@x.com")
	stranger := createTestUser(db, "del-stranger@x.com")

	t.Run("Owner Can Delete", func(t *testing.T) {
		link, _ := service.CreateShortLink(owner.ID, "https://gone.example", "127.0.0.1")

		err := service.DeleteLink(link.ShortCode, owner.ID, "127.0.0.1")
		assert.NoError(t, err)

		var count int64
		db.Model(&models.Link{}).Where("short_code = ?", link.ShortCode).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Non-Owner Delete Looks Like Not Found", func(t *testing.T) {
		link, _ := service.CreateShortLink(owner.ID, "https://keep.example", "127.0.0.1")

		errStranger := service.DeleteLink(link.ShortCode, stranger.ID, "127.0.0.1")
		errMissing := service.DeleteLink("NEVER1", stranger.ID, "127.0.0.1")

		assert.ErrorIs(t, errStranger, ErrLinkNotFound)
		assert.ErrorIs(t, errMissing, ErrLinkNotFound)
		assert.Equal(t, fmt.Sprint(errMissing), fmt.Sprint(errStranger))

		var count int64
		db.Model(&models.Link{}).Where("short_code = ?", link.ShortCode).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}
