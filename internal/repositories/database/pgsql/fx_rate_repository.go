package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/SubledgerHQ/cari_backend/internal/models"
	"github.com/SubledgerHQ/cari_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fxRateColumns = `
	fx_rate_id, tenant_id, rate_date, from_currency, to_currency, rate_type,
	rate, is_locked, created_at, created_by, last_updated_at, last_updated_by`

// PgxFxRateRepository implements rate table access with pgx.
type PgxFxRateRepository struct {
	BaseRepository
}

// newPgxFxRateRepository creates a repository for rate data.
func newPgxFxRateRepository(pool *pgxpool.Pool) portsrepo.FxRateRepositoryFacade {
	return &PgxFxRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FxRateRepositoryFacade = (*PgxFxRateRepository)(nil)

func scanFxRate(row pgx.Row) (models.FxRate, error) {
	var m models.FxRate
	err := row.Scan(
		&m.FxRateID, &m.TenantID, &m.RateDate, &m.FromCurrency, &m.ToCurrency, &m.RateType,
		&m.Rate, &m.IsLocked, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxFxRateRepository) FindRate(ctx context.Context, tenantID string, rateDate time.Time, fromCurrency, toCurrency string, rateType domain.FxRateType) (*domain.FxRate, error) {
	query := `SELECT ` + fxRateColumns + `
		FROM fx_rates
		WHERE tenant_id = $1 AND rate_date = $2 AND from_currency = $3 AND to_currency = $4 AND rate_type = $5;
	`
	m, err := scanFxRate(r.Pool.QueryRow(ctx, query, tenantID, rateDate.Truncate(24*time.Hour), fromCurrency, toCurrency, string(rateType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no " + string(rateType) + " rate for " + fromCurrency + "/" + toCurrency + " on " + rateDate.Format("2006-01-02"))
		}
		return nil, apperrors.NewAppError(500, "failed to query fx rate", err)
	}
	rate := mapping.ToDomainFxRate(m)
	return &rate, nil
}

func (r *PgxFxRateRepository) ListRates(ctx context.Context, tenantID, fromCurrency, toCurrency string, limit int) ([]domain.FxRate, error) {
	query := `SELECT ` + fxRateColumns + `
		FROM fx_rates
		WHERE tenant_id = $1 AND from_currency = $2 AND to_currency = $3
		ORDER BY rate_date DESC, rate_type
		LIMIT $4;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, fromCurrency, toCurrency, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query fx rates", err)
	}
	defer rows.Close()

	var result []models.FxRate
	for rows.Next() {
		m, err := scanFxRate(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fx rate", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read fx rates", err)
	}
	return mapping.ToDomainFxRateSlice(result), nil
}

// SaveRate upserts on the (tenant, date, pair, type) natural key so rate feeds
// can be re-ingested without duplicate-key failures.
func (r *PgxFxRateRepository) SaveRate(ctx context.Context, rate domain.FxRate) error {
	m := mapping.ToModelFxRate(rate)
	query := `
		INSERT INTO fx_rates (` + fxRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, rate_date, from_currency, to_currency, rate_type)
		DO UPDATE SET rate = EXCLUDED.rate,
		              is_locked = EXCLUDED.is_locked,
		              last_updated_at = EXCLUDED.last_updated_at,
		              last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.FxRateID, m.TenantID, m.RateDate, m.FromCurrency, m.ToCurrency, m.RateType,
		m.Rate, m.IsLocked, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save fx rate", err)
	}
	return nil
}
