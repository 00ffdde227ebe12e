package postgres

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	sessionDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/session"
)

// CookieRepository persists the cookie jar of one profile.
type CookieRepository struct {
	db      *gorm.DB
	profile string
}

func NewCookieRepository(db *gorm.DB, profile string) *CookieRepository {
	return &CookieRepository{db: db, profile: profile}
}

func (r *CookieRepository) LoadCookies(ctx context.Context) ([]*http.Cookie, error) {
	var rows []sessionDatamodel.Cookie
	err := r.db.WithContext(ctx).
		Where("profile = ?", r.profile).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	cookies := make([]*http.Cookie, 0, len(rows))
	for _, row := range rows {
		c := &http.Cookie{
			Name:     row.Name,
			Value:    row.Value,
			Domain:   row.Domain,
			Path:     row.Path,
			Secure:   row.Secure,
			HttpOnly: row.HttpOnly,
		}
		if row.Expires != nil {
			c.Expires = *row.Expires
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// ReplaceCookies swaps the stored set for cookies in one transaction.
func (r *CookieRepository) ReplaceCookies(ctx context.Context, cookies []*http.Cookie) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile = ?", r.profile).Delete(&sessionDatamodel.Cookie{}).Error; err != nil {
			return err
		}
		if len(cookies) == 0 {
			return nil
		}

		rows := make([]sessionDatamodel.Cookie, 0, len(cookies))
		for _, c := range cookies {
			row := sessionDatamodel.Cookie{
				Profile:  r.profile,
				Name:     c.Name,
				Domain:   c.Domain,
				Path:     c.Path,
				Value:    c.Value,
				Secure:   c.Secure,
				HttpOnly: c.HttpOnly,
			}
			if row.Path == "" {
				row.Path = "/"
			}
			if !c.Expires.IsZero() {
				expires := c.Expires.UTC()
				row.Expires = &expires
			}
			rows = append(rows, row)
		}
		return tx.Create(&rows).Error
	})
}
