package models

import "time"

// TransactionKind discriminates sale filings from lease filings. It is set
// once when a record is parsed and never re-derived from field values.
type TransactionKind string

const (
	KindSale  TransactionKind = "sale"
	KindLease TransactionKind = "lease"
)

// Source values for fetched data.
const (
	SourceLive = "live"
	SourceDemo = "demo"
)

// Transaction is one real-estate filing reported by the MOLIT API.
// Records are immutable once parsed; duplicates are rejected on insert by the
// (apt_name, apt_seq, deal_date, deal_amount) uniqueness constraint.
type Transaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AptName       string          `gorm:"column:apt_name;uniqueIndex:idx_tx_dedup" json:"apt_name"`
	AptSeq        string          `gorm:"column:apt_seq;uniqueIndex:idx_tx_dedup" json:"apt_seq"`
	Kind          TransactionKind `gorm:"column:kind" json:"kind"`
	RegionCode    string          `gorm:"column:region_code;index" json:"region_code"`
	RegionName    string          `gorm:"column:region_name" json:"region_name"`
	DongName      string          `gorm:"column:umd_nm" json:"umd_nm"`
	DealDate      string          `gorm:"column:deal_date;uniqueIndex:idx_tx_dedup;index" json:"deal_date"`
	DealYear      int             `gorm:"column:deal_year" json:"deal_year"`
	DealMonth     int             `gorm:"column:deal_month" json:"deal_month"`
	DealDay       int             `gorm:"column:deal_day" json:"deal_day"`
	DealAmount    int             `gorm:"column:deal_amount;uniqueIndex:idx_tx_dedup" json:"deal_amount"`
	ExclusiveArea float64         `gorm:"column:exclusive_area" json:"exclusive_area"`
	PricePerArea  float64         `gorm:"column:price_per_area" json:"price_per_area"`
	Floor         int             `gorm:"column:floor" json:"floor"`
	BuildYear     int             `gorm:"column:build_year" json:"build_year"`
	RoadName      string          `gorm:"column:road_name" json:"road_name"`
	RoadNameBon   string          `gorm:"column:road_name_bonbun" json:"road_name_bonbun"`
	RoadNameBu    string          `gorm:"column:road_name_bubun" json:"road_name_bubun"`
	Jibun         string          `gorm:"column:jibun" json:"jibun"`
	BuyerGbn      string          `gorm:"column:buyer_gbn" json:"buyer_gbn"`
	SellerGbn     string          `gorm:"column:sler_gbn" json:"sler_gbn"`
	DealingGbn    string          `gorm:"column:dealing_gbn" json:"dealing_gbn"`

	// Lease-only fields; zero for sale records. A zero MonthlyRent on a
	// lease record means a pure deposit lease.
	Deposit      int    `gorm:"column:deposit" json:"deposit"`
	MonthlyRent  int    `gorm:"column:monthly_rent" json:"monthly_rent"`
	ContractTerm string `gorm:"column:contract_term" json:"contract_term"`
	ContractType string `gorm:"column:contract_type" json:"contract_type"`

	// Source marks whether the record came from the live API or the demo
	// fallback generator
	Source string `gorm:"column:source" json:"source"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transaction_data"
}

// IsLease reports the transaction kind. Callers must use this rather than
// checking deposit or rent values.
func (t *Transaction) IsLease() bool {
	return t.Kind == KindLease
}

// FetchResult is the outcome of one month (or one page) fetch. Upstream
// semantic failures are carried here as Success=false plus the upstream
// message; they are not Go errors.
type FetchResult struct {
	Success      bool          `json:"success"`
	Data         []Transaction `json:"data"`
	TotalCount   int           `json:"total_count"`
	RegionCode   string        `json:"region_code"`
	RegionName   string        `json:"region_name"`
	DealYMD      string        `json:"deal_ymd"`
	Source       string        `json:"source"`
	SkippedItems int           `json:"skipped_items,omitempty"`
	Error        string        `json:"error,omitempty"`
	Message      string        `json:"message,omitempty"`

	// TransportError distinguishes connection-level failures from upstream
	// semantic errors; only the former trigger the demo fallback.
	TransportError bool `json:"-"`
}

// CombinedResult is the merged outcome of a concurrent sale+lease fetch.
type CombinedResult struct {
	Data       []Transaction `json:"data"`
	SaleCount  int           `json:"sale_count"`
	RentCount  int           `json:"rent_count"`
	TotalCount int           `json:"total_count"`
	Source     string        `json:"source"`
	SaleError  string        `json:"sale_error,omitempty"`
	RentError  string        `json:"rent_error,omitempty"`
}
