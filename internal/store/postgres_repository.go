package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/insights"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/parking"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// The schema lives in migrations/001_init.sql.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL parking repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const lotColumns = `
	id, name, address, district,
	total_spots, occupied_spots, base_price, rating,
	lat, lng, has_discount, has_ev_charger
`

// GetLot retrieves a lot by ID.
func (r *PostgresRepository) GetLot(ctx context.Context, id string) (*parking.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`

	lot, err := scanLot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLotNotFound
		}
		return nil, err
	}
	return lot, nil
}

// ListLots retrieves every lot ordered by ID.
func (r *PostgresRepository) ListLots(ctx context.Context) ([]parking.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []parking.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, *lot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lots, nil
}

func scanLot(row pgx.Row) (*parking.Lot, error) {
	var lot parking.Lot
	err := row.Scan(
		&lot.ID,
		&lot.Name,
		&lot.Address,
		&lot.District,
		&lot.TotalSpots,
		&lot.OccupiedSpots,
		&lot.BasePrice,
		&lot.Rating,
		&lot.Location.Lat,
		&lot.Location.Lng,
		&lot.HasDiscount,
		&lot.HasEVCharger,
	)
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// ListSpots retrieves the spots of a lot with the occupancy of each spot's area.
func (r *PostgresRepository) ListSpots(ctx context.Context, lotID string) ([]allocation.Spot, error) {
	if _, err := r.GetLot(ctx, lotID); err != nil {
		return nil, err
	}

	query := `
		SELECT
			id, floor, area, location,
			length, width, distance_to_entrance, price, occupied,
			COUNT(*) FILTER (WHERE occupied) OVER (PARTITION BY floor, area),
			COUNT(*) OVER (PARTITION BY floor, area)
		FROM spots
		WHERE lot_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spots := []allocation.Spot{}
	for rows.Next() {
		var s allocation.Spot
		err := rows.Scan(
			&s.ID,
			&s.Floor,
			&s.Area,
			&s.Location,
			&s.Length,
			&s.Width,
			&s.DistanceToEntrance,
			&s.Price,
			&s.Occupied,
			&s.AreaOccupancy.Occupied,
			&s.AreaOccupancy.Total,
		)
		if err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return spots, nil
}

// GetUser retrieves a user with their credit record and parking history.
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT
			id, name, vehicle_type, needs_ev_charger,
			total_payments, on_time_payments, missed_reservations,
			complaints, positive_reviews, total_parking_times
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.VehicleType,
		&u.NeedsEVCharger,
		&u.Credit.TotalPayments,
		&u.Credit.OnTimePayments,
		&u.Credit.MissedReservations,
		&u.Credit.Complaints,
		&u.Credit.PositiveReviews,
		&u.Credit.TotalParkingTimes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	history, err := r.history(ctx, id)
	if err != nil {
		return nil, err
	}
	u.History = history
	return &u, nil
}

func (r *PostgresRepository) history(ctx context.Context, userID string) ([]parking.HistoryRecord, error) {
	query := `
		SELECT lot_id, fee, duration_hours, distance_meters, vehicle_type, parked_at
		FROM parking_history
		WHERE user_id = $1
		ORDER BY parked_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []parking.HistoryRecord
	for rows.Next() {
		var h parking.HistoryRecord
		if err := rows.Scan(&h.LotID, &h.Fee, &h.Duration, &h.Distance, &h.VehicleType, &h.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetSnapshot retrieves the latest operational snapshot of a lot.
func (r *PostgresRepository) GetSnapshot(ctx context.Context, lotID string) (*insights.Snapshot, error) {
	if _, err := r.GetLot(ctx, lotID); err != nil {
		return nil, err
	}

	query := `
		SELECT
			lot_id, taken_at, daily_revenue, avg_duration, short_term_ratio,
			areas, history, devices
		FROM lot_snapshots
		WHERE lot_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`

	var (
		s                       insights.Snapshot
		areas, history, devices []byte
	)
	err := r.pool.QueryRow(ctx, query, lotID).Scan(
		&s.LotID,
		&s.At,
		&s.DailyRevenue,
		&s.AvgDuration,
		&s.ShortTermRatio,
		&areas,
		&history,
		&devices,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	if err := unmarshalColumns(map[string]columnValue{
		"areas":   {areas, &s.Areas},
		"history": {history, &s.History},
		"devices": {devices, &s.Devices},
	}); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindVehicle retrieves a parked vehicle by plate.
func (r *PostgresRepository) FindVehicle(ctx context.Context, plate string) (*navigation.ParkedVehicle, error) {
	query := `
		SELECT plate, lot_id, spot_id, x, y, floor, parked_at, fee_paid, hourly_rate
		FROM parked_vehicles
		WHERE plate = $1
	`

	var v navigation.ParkedVehicle
	err := r.pool.QueryRow(ctx, query, plate).Scan(
		&v.Plate,
		&v.LotID,
		&v.SpotID,
		&v.Position.X,
		&v.Position.Y,
		&v.Position.Floor,
		&v.ParkedAt,
		&v.FeePaid,
		&v.HourlyRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// SaveInsights stores an insight report.
func (r *PostgresRepository) SaveInsights(ctx context.Context, report *InsightReport) error {
	payload, err := json.Marshal(report.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	query := `
		INSERT INTO insight_reports (id, lot_id, generated_at, insights)
		SELECT $1, id, $3, $4 FROM lots WHERE id = $2
	`

	tag, err := r.pool.Exec(ctx, query, report.ID, report.LotID, report.GeneratedAt, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLotNotFound
	}
	return nil
}

// LatestInsights retrieves the most recent insight report of a lot.
func (r *PostgresRepository) LatestInsights(ctx context.Context, lotID string) (*InsightReport, error) {
	query := `
		SELECT id, lot_id, generated_at, insights
		FROM insight_reports
		WHERE lot_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var (
		rep     InsightReport
		payload []byte
	)
	err := r.pool.QueryRow(ctx, query, lotID).Scan(&rep.ID, &rep.LotID, &rep.GeneratedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(payload, &rep.Insights); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	return &rep, nil
}

type columnValue struct {
	raw  []byte
	dest any
}

func unmarshalColumns(cols map[string]columnValue) error {
	for name, c := range cols {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dest); err != nil {
			return fmt.Errorf("unmarshal %s: %w", name, err)
		}
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
