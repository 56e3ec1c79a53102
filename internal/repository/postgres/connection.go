package postgres

import (
	"context"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/rotisserie/eris"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, eris.Wrap(err, "open postgres connection")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema once at startup. Business code assumes the
// schema is already correct.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Player{},
		&domain.UserSession{},
		&domain.PlayerRating{},
		&domain.Team{},
		&domain.Match{},
		&domain.MatchHistory{},
		&domain.DodgeEntry{},
	)
	if err != nil {
		return eris.Wrap(err, "run migrations")
	}
	return nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Player:       NewPlayerRepository(db),
		Session:      NewSessionRepository(db),
		Rating:       NewRatingRepository(db),
		Team:         NewTeamRepository(db),
		Match:        NewMatchRepository(db),
		MatchHistory: NewMatchHistoryRepository(db),
		Dodge:        NewDodgeRepository(db),
		Tx:           NewTransactor(db),
	}
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *transactor {
	return &transactor{db: db}
}

// InTx rebuilds the repository set over a gorm transaction so every
// store write inside fn commits or rolls back together.
func (t *transactor) InTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
