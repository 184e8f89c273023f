package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ItineraryRow is one row of the itineraries table. The full itinerary is
// kept in document; the other columns are for querying.
type ItineraryRow struct {
	bun.BaseModel `bun:"table:itineraries,alias:it"`

	ID             string               `bun:"id,pk"`
	Destination    string               `bun:"destination,notnull"`
	Budget         float64              `bun:"budget,notnull"`
	TotalCost      float64              `bun:"total_cost,notnull"`
	WithinBudget   bool                 `bun:"within_budget,notnull"`
	IterationCount int                  `bun:"iteration_count,notnull"`
	CreatedAt      time.Time            `bun:"created_at,notnull"`
	Document       *contractx.Itinerary `bun:"document,type:jsonb,notnull"`
}

func NewItineraryRow(it *contractx.Itinerary) ItineraryRow {
	return ItineraryRow{
		ID:             it.ID,
		Destination:    it.Requirements.Destination,
		Budget:         it.Requirements.Budget,
		TotalCost:      it.Budget.Total,
		WithinBudget:   it.Budget.WithinBudget,
		IterationCount: it.IterationCount,
		CreatedAt:      it.CreatedAt.UTC(),
		Document:       it,
	}
}

// OpenPostgres builds a bun.DB over pgdriver. No connection is made until
// the first query.
func OpenPostgres(dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", contractx.ErrValidation)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

var _ Archive = (*PostgresArchive)(nil)

type PostgresArchive struct {
	db bun.IDB
}

func NewPostgresArchive(db bun.IDB) (*PostgresArchive, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresArchive{db: db}, nil
}

// CreateSchema creates the itineraries table when it does not exist.
func (a *PostgresArchive) CreateSchema(ctx context.Context) error {
	if _, err := a.createTableQuery().Exec(ctx); err != nil {
		return fmt.Errorf("create itineraries table: %w", err)
	}
	return nil
}

// SaveItinerary upserts by itinerary id.
func (a *PostgresArchive) SaveItinerary(ctx context.Context, it *contractx.Itinerary) error {
	if it == nil {
		return fmt.Errorf("%w: itinerary is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("%w: itinerary id is required", contractx.ErrValidation)
	}
	row := NewItineraryRow(it)
	if _, err := a.insertQuery(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert itinerary %s: %w", it.ID, err)
	}
	return nil
}

// RecentByDestination returns up to limit itineraries whose destination
// contains destination, newest first.
func (a *PostgresArchive) RecentByDestination(ctx context.Context, destination string, limit int) ([]ItineraryRow, error) {
	var rows []ItineraryRow
	if err := a.recentQuery(&rows, destination, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select itineraries for %s: %w", destination, err)
	}
	return rows, nil
}

func (a *PostgresArchive) createTableQuery() *bun.CreateTableQuery {
	return a.db.NewCreateTable().Model((*ItineraryRow)(nil)).IfNotExists()
}

func (a *PostgresArchive) insertQuery(row *ItineraryRow) *bun.InsertQuery {
	return a.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("total_cost = EXCLUDED.total_cost").
		Set("within_budget = EXCLUDED.within_budget").
		Set("iteration_count = EXCLUDED.iteration_count").
		Set("document = EXCLUDED.document")
}

func (a *PostgresArchive) recentQuery(rows *[]ItineraryRow, destination string, limit int) *bun.SelectQuery {
	if limit <= 0 {
		limit = 10
	}
	return a.db.NewSelect().
		Model(rows).
		Where("destination ILIKE ?", "%"+strings.TrimSpace(destination)+"%").
		OrderExpr("created_at DESC").
		Limit(limit)
}
