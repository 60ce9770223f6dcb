package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"zealAPI/internal/types/badge"
)

type BadgeService struct {
	db *pgxpool.Pool
}

func NewBadgeService(db *pgxpool.Pool) *BadgeService {
	return &BadgeService{db: db}
}

// ListChallengeBadges returns the badges a challenge may be configured to award.
func (s *BadgeService) ListChallengeBadges(ctx context.Context) ([]*badge.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE type = $1 ORDER BY name`

	rows, err := s.db.Query(ctx, query, badge.TypeChallenge)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	badges := []*badge.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (s *BadgeService) CreateBadge(ctx context.Context, b *badge.Badge) (*badge.Badge, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Type == "" {
		b.Type = badge.TypeChallenge
	}

	query := `
	INSERT INTO badges (id, name, image, category, description, type)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	err := s.db.QueryRow(ctx, query, b.ID, b.Name, b.Image, b.Category, b.Description, b.Type).Scan(&b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}
	return b, nil
}
