package models

// NationRevenue is the revenue of one nation.
type NationRevenue struct {
	Nation  string  `json:"nation"`
	Revenue float64 `json:"revenue"`
}

type RevenueReport struct {
	Region    string          `json:"region"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Threads   int             `json:"threads"`
	Nations   []NationRevenue `json:"nations"`
	Total     int             `json:"total"`
	Limit     int             `json:"limit"`
	Offset    int             `json:"offset"`
	ElapsedMs float64         `json:"elapsed_ms"`
}

type TableStat struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}
