package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"aptrack/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// SaveTransactions inserts a batch of transactions, silently skipping rows
// that hit the dedup uniqueness constraint. Returns the number of rows
// actually inserted.
func (d *Database) SaveTransactions(transactions []models.Transaction) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO transaction_data
		(apt_name, apt_seq, kind, region_code, region_name, umd_nm,
		 deal_date, deal_year, deal_month, deal_day, deal_amount,
		 exclusive_area, price_per_area, floor, build_year,
		 road_name, road_name_bonbun, road_name_bubun, jibun,
		 buyer_gbn, sler_gbn, dealing_gbn,
		 deposit, monthly_rent, contract_term, contract_type, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range transactions {
		res, err := stmt.Exec(
			t.AptName, t.AptSeq, string(t.Kind), t.RegionCode, t.RegionName, t.DongName,
			t.DealDate, t.DealYear, t.DealMonth, t.DealDay, t.DealAmount,
			t.ExclusiveArea, t.PricePerArea, t.Floor, t.BuildYear,
			t.RoadName, t.RoadNameBon, t.RoadNameBu, t.Jibun,
			t.BuyerGbn, t.SellerGbn, t.DealingGbn,
			t.Deposit, t.MonthlyRent, t.ContractTerm, t.ContractType, t.Source,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert transaction: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// GetApartmentTransactions returns the stored transactions of one complex,
// newest first.
func (d *Database) GetApartmentTransactions(aptName, regionCode string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.Query(`
		SELECT id, apt_name, apt_seq, kind, region_code, region_name, umd_nm,
		       deal_date, deal_year, deal_month, deal_day, deal_amount,
		       exclusive_area, price_per_area, floor, build_year,
		       COALESCE(road_name, ''), COALESCE(jibun, ''),
		       deposit, monthly_rent,
		       COALESCE(contract_term, ''), COALESCE(contract_type, ''),
		       COALESCE(source, 'live')
		FROM transaction_data
		WHERE apt_name = ? AND region_code = ?
		ORDER BY deal_date DESC
		LIMIT ?
	`, aptName, regionCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetApartmentsByDong aggregates the stored transactions of one dong into
// per-complex rollups.
func (d *Database) GetApartmentsByDong(regionCode, dongName string) ([]models.ApartmentRollup, error) {
	return d.apartmentRollups(`
		SELECT apt_name, region_code, region_name, MAX(build_year),
		       COUNT(*),
		       SUM(CASE WHEN kind = 'sale' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN kind = 'lease' THEN 1 ELSE 0 END),
		       COALESCE(AVG(CASE WHEN price_per_area > 0 THEN price_per_area END), 0),
		       COALESCE(MIN(CASE WHEN price_per_area > 0 THEN price_per_area END), 0),
		       COALESCE(MAX(CASE WHEN price_per_area > 0 THEN price_per_area END), 0)
		FROM transaction_data
		WHERE region_code = ? AND umd_nm = ?
		GROUP BY apt_name
		ORDER BY COUNT(*) DESC, apt_name
	`, regionCode, dongName)
}

// GetApartmentsByRegion aggregates the stored transactions of a whole region
// into per-complex rollups.
func (d *Database) GetApartmentsByRegion(regionCode string) ([]models.ApartmentRollup, error) {
	return d.apartmentRollups(`
		SELECT apt_name, region_code, region_name, MAX(build_year),
		       COUNT(*),
		       SUM(CASE WHEN kind = 'sale' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN kind = 'lease' THEN 1 ELSE 0 END),
		       COALESCE(AVG(CASE WHEN price_per_area > 0 THEN price_per_area END), 0),
		       COALESCE(MIN(CASE WHEN price_per_area > 0 THEN price_per_area END), 0),
		       COALESCE(MAX(CASE WHEN price_per_area > 0 THEN price_per_area END), 0)
		FROM transaction_data
		WHERE region_code = ?
		GROUP BY apt_name
		ORDER BY COUNT(*) DESC, apt_name
	`, regionCode)
}

func (d *Database) apartmentRollups(query string, args ...interface{}) ([]models.ApartmentRollup, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rollups []models.ApartmentRollup
	for rows.Next() {
		var r models.ApartmentRollup
		var buildYear sql.NullInt64
		err := rows.Scan(
			&r.AptName, &r.RegionCode, &r.RegionName, &buildYear,
			&r.TransactionCount, &r.SaleCount, &r.RentCount,
			&r.AvgPrice, &r.MinPrice, &r.MaxPrice,
		)
		if err != nil {
			return nil, err
		}
		if buildYear.Valid {
			r.BuildYear = int(buildYear.Int64)
		}
		rollups = append(rollups, r)
	}
	return rollups, rows.Err()
}

// GetPriceTrend computes the monthly price-per-area history of one complex
// over the trailing window, oldest month first. Only sale records with a
// positive unit price contribute.
func (d *Database) GetPriceTrend(aptName, regionCode string, months int) (models.PriceTrend, error) {
	if months <= 0 {
		months = 12
	}

	rows, err := d.db.Query(`
		SELECT substr(deal_date, 1, 7) AS month,
		       AVG(price_per_area), MIN(price_per_area), MAX(price_per_area), COUNT(*)
		FROM transaction_data
		WHERE apt_name = ? AND region_code = ? AND kind = 'sale'
		  AND price_per_area > 0
		  AND deal_date >= date('now', ?)
		GROUP BY month
		ORDER BY month
	`, aptName, regionCode, fmt.Sprintf("-%d months", months))
	if err != nil {
		return models.PriceTrend{}, err
	}
	defer rows.Close()

	var trend models.PriceTrend
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Month, &p.AvgPrice, &p.MinPrice, &p.MaxPrice, &p.TransactionCount); err != nil {
			return models.PriceTrend{}, err
		}
		trend.Trend = append(trend.Trend, p)
	}
	if err := rows.Err(); err != nil {
		return models.PriceTrend{}, err
	}

	trend.Summary = summarizeTrend(trend.Trend)
	return trend, nil
}

func summarizeTrend(points []models.TrendPoint) models.TrendSummary {
	var s models.TrendSummary
	if len(points) == 0 {
		return s
	}

	var weighted float64
	s.MinPrice = points[0].MinPrice
	for _, p := range points {
		s.TotalTransactions += p.TransactionCount
		weighted += p.AvgPrice * float64(p.TransactionCount)
		if p.MinPrice < s.MinPrice {
			s.MinPrice = p.MinPrice
		}
		if p.MaxPrice > s.MaxPrice {
			s.MaxPrice = p.MaxPrice
		}
	}
	if s.TotalTransactions > 0 {
		s.AvgPrice = weighted / float64(s.TotalTransactions)
	}

	first := points[0].AvgPrice
	last := points[len(points)-1].AvgPrice
	if first > 0 {
		s.PriceChange = (last - first) / first * 100
	}
	return s
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var kind string
		err := rows.Scan(
			&t.ID, &t.AptName, &t.AptSeq, &kind, &t.RegionCode, &t.RegionName, &t.DongName,
			&t.DealDate, &t.DealYear, &t.DealMonth, &t.DealDay, &t.DealAmount,
			&t.ExclusiveArea, &t.PricePerArea, &t.Floor, &t.BuildYear,
			&t.RoadName, &t.Jibun,
			&t.Deposit, &t.MonthlyRent,
			&t.ContractTerm, &t.ContractType,
			&t.Source,
		)
		if err != nil {
			return nil, err
		}
		t.Kind = models.TransactionKind(kind)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
