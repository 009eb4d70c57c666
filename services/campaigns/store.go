package campaigns

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"kickadvisor-backend/lib/htmlutil"
	"kickadvisor-backend/services/campaigns/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Store persists scraped campaigns and their extracted feature
// vectors. Vectors are kept as JSON arrays next to the campaign row.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

type SaveRequest struct {
	Url       string
	Title     string
	ScrapedAt time.Time
	AboutHtml string
	RisksHtml string
	Anchors   []htmlutil.Anchor
	Vector    []float64
}

func (s Store) Save(ctx context.Context, req SaveRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	anchors, err := json.Marshal(req.Anchors)
	if err != nil {
		return err
	}
	err = txqry.UpsertCampaign(ctx, db.UpsertCampaignParams{
		Url:       req.Url,
		Title:     req.Title,
		ScrapedAt: req.ScrapedAt.Unix(),
		AboutHtml: req.AboutHtml,
		RisksHtml: req.RisksHtml,
		Anchors:   string(anchors),
	})
	if err != nil {
		return err
	}

	if req.Vector != nil {
		campaignId, err := txqry.GetCampaignId(ctx, req.Url)
		if err != nil {
			return err
		}

		vector, err := json.Marshal(req.Vector)
		if err != nil {
			return err
		}
		err = txqry.UpsertFeatureVector(ctx, db.UpsertFeatureVectorParams{
			CampaignID:  campaignId,
			ExtractedAt: req.ScrapedAt.Unix(),
			Vector:      string(vector),
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type Record struct {
	Url       string
	Title     string
	ScrapedAt time.Time
	AboutHtml string
	RisksHtml string
	Anchors   []htmlutil.Anchor
	State     string
	Goal      float64
	Pledged   float64
}

func recordFromRow(row db.Campaign) Record {
	// a corrupt anchors column degrades to no anchors
	var anchors []htmlutil.Anchor
	json.Unmarshal([]byte(row.Anchors), &anchors)

	return Record{
		Url:       row.Url,
		Title:     row.Title,
		ScrapedAt: time.Unix(row.ScrapedAt, 0),
		AboutHtml: row.AboutHtml,
		RisksHtml: row.RisksHtml,
		Anchors:   anchors,
		State:     row.State,
		Goal:      row.Goal,
		Pledged:   row.Pledged,
	}
}

func (s Store) Get(ctx context.Context, url string) (Record, error) {
	row, err := s.qry.GetCampaignByUrl(ctx, url)
	if err != nil {
		return Record{}, err
	}
	return recordFromRow(row), nil
}

func (s Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.qry.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = recordFromRow(row)
	}
	return records, nil
}

type Outcome struct {
	State   string
	Goal    float64
	Pledged float64
}

func (s Store) SetOutcome(ctx context.Context, url string, outcome Outcome) error {
	return s.qry.SetCampaignOutcome(ctx, db.SetCampaignOutcomeParams{
		State:   outcome.State,
		Goal:    outcome.Goal,
		Pledged: outcome.Pledged,
		Url:     url,
	})
}

type VectorOutcome struct {
	Vector  []float64
	Goal    float64
	Pledged float64
	State   string
}

// Vectors returns every stored feature vector joined with its
// campaign outcome. Rows with a corrupt vector column are skipped.
func (s Store) Vectors(ctx context.Context) ([]VectorOutcome, error) {
	rows, err := s.qry.ListVectorsWithOutcome(ctx)
	if err != nil {
		return nil, err
	}

	var out []VectorOutcome
	for _, r := range rows {
		var vector []float64
		err = json.Unmarshal([]byte(r.Vector), &vector)
		if err != nil {
			slog.WarnContext(ctx, "failed to unmarshal db feature vector", "err", err)
			continue
		}
		out = append(out, VectorOutcome{
			Vector:  vector,
			Goal:    r.Goal,
			Pledged: r.Pledged,
			State:   r.State,
		})
	}

	return out, nil
}
