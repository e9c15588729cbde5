package news

import (
	"context"
	"encoding/json"
)

// Uncategorized is the topic of records with no company, ticker or category.
const Uncategorized = "미분류"

// RecordID uniquely identifies a news record.
type RecordID int64

// Record is a single news article as served by the news source.
type Record struct {
	ID          RecordID `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Summary     string   `json:"summary" yaml:"summary"`
	Content     string   `json:"content,omitempty" yaml:"content,omitempty"`
	Sentiment   string   `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
	ImpactScore float64  `json:"impact_score,omitempty" yaml:"impact_score,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Company     string   `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	Ticker      string   `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	Source      string   `json:"source,omitempty" yaml:"source,omitempty"`
	PublishedAt string   `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	// DisplayDate is stamped when the record enters the active feed.
	DisplayDate string `json:"display_date,omitempty" yaml:"display_date,omitempty"`
}

// Topic returns the grouping key used to keep the feed from clustering.
func (r Record) Topic() string {
	switch {
	case r.Company != "":
		return r.Company
	case r.Ticker != "":
		return r.Ticker
	case r.Category != "":
		return r.Category
	default:
		return Uncategorized
	}
}

// UnmarshalJSON accepts the company under "company_name", "companyName" or "company".
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var aux struct {
		plain
		CompanyName string `json:"companyName"`
		CompanyAlt  string `json:"company"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Record(aux.plain)
	if r.Company == "" {
		r.Company = aux.CompanyName
	}
	if r.Company == "" {
		r.Company = aux.CompanyAlt
	}
	return nil
}

// Source supplies the backlog of news records for a session.
type Source interface {
	FetchNewsList(ctx context.Context) ([]Record, error)
}
