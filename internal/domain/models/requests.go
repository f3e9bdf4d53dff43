package models

// Requests for selection HTTP endpoints. Defined in domain for consistency and reuse.

type RankRequest struct {
	Date string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type SelectRequest struct {
	Date    string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
	TopN    int    `query:"top_n" json:"top_n" default:"0" validate:"gte=0,lte=100"`
	Publish bool   `query:"publish" json:"publish" default:"false"`
}

type RebalanceDatesRequest struct {
	Start string `query:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End   string `query:"end" json:"end" validate:"required,datetime=2006-01-02"`
}
