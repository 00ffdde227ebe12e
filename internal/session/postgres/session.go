package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	sessionDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/session"
)

type SessionRepository struct {
	db      *gorm.DB
	profile string
	logger  *slog.Logger
}

func NewSessionRepository(db *gorm.DB, profile string, logger *slog.Logger) *SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepository{db: db, profile: profile, logger: logger}
}

// Load returns the stored snapshot. A user that cannot be decoded is dropped
// so the store sees a partial snapshot and discards it.
func (r *SessionRepository) Load(ctx context.Context) (session.Session, error) {
	var snap sessionDatamodel.Snapshot
	err := r.db.WithContext(ctx).Where("profile = ?", r.profile).First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Session{}, nil
		}
		return session.Session{}, err
	}

	out := session.Session{AccessToken: snap.AccessToken}
	if snap.UserJSON == "" {
		return out, nil
	}

	var u user.User
	if err := json.Unmarshal([]byte(snap.UserJSON), &u); err != nil || u.ID == "" || !u.Role.Valid() {
		r.logger.Warn("session snapshot holds an undecodable user", "profile", r.profile, "error", err)
		return out, nil
	}
	out.User = &u
	return out, nil
}

func (r *SessionRepository) Save(ctx context.Context, s session.Session) error {
	if !s.HasUser() && !s.HasToken() {
		return r.db.WithContext(ctx).
			Where("profile = ?", r.profile).
			Delete(&sessionDatamodel.Snapshot{}).Error
	}

	snap := sessionDatamodel.Snapshot{
		Profile:     r.profile,
		AccessToken: s.AccessToken,
		UpdatedAt:   time.Now().UTC(),
	}
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return err
		}
		snap.UserJSON = string(raw)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&snap).Error
}
