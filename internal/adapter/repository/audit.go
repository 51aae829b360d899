package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"

	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/repository"
	"github.com/eslsoft/hebcorpus/pkg/filterexpr"
)

var listAuditsSchema = filterexpr.Schema{
	Filter: map[string]filterexpr.Field{
		"status": {
			Kind:    filterexpr.KindString,
			Targets: map[filterexpr.Op]string{filterexpr.OpEQ: "Status", filterexpr.OpIN: "Statuses"},
		},
		"book_id": {
			Kind:    filterexpr.KindInt,
			Targets: map[filterexpr.Op]string{filterexpr.OpEQ: "BookID"},
		},
		"chapter_number": {
			Kind:    filterexpr.KindInt,
			Targets: map[filterexpr.Op]string{filterexpr.OpEQ: "Chapter"},
		},
		"created_at": {
			Kind:    filterexpr.KindTimestamp,
			Targets: map[filterexpr.Op]string{filterexpr.OpGTE: "CreatedAfter", filterexpr.OpLTE: "CreatedBefore"},
		},
	},
	Order: filterexpr.OrderSchema{
		Default:  []filterexpr.OrderTerm{{Key: "created_at", Column: "created_at", Desc: true}},
		Columns:  map[string]string{"created_at": "created_at", "id": "id", "chapter_number": "chapter_number"},
		Tiebreak: filterexpr.OrderTerm{Key: "id", Column: "id", Desc: true},
	},
}

type listAuditsParams struct {
	Status        *string
	Statuses      []string
	BookID        *int64
	Chapter       *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (p *listAuditsParams) predicate() *entsql.Predicate {
	var preds []*entsql.Predicate
	if p.Status != nil {
		preds = append(preds, entsql.EQ("status", *p.Status))
	}
	if len(p.Statuses) > 0 {
		preds = append(preds, entsql.In("status", lo.ToAnySlice(p.Statuses)...))
	}
	if p.BookID != nil {
		preds = append(preds, entsql.EQ("custom_hebrew_book_id", *p.BookID))
	}
	if p.Chapter != nil {
		preds = append(preds, entsql.EQ("chapter_number", *p.Chapter))
	}
	if p.CreatedAfter != nil {
		preds = append(preds, entsql.GTE("created_at", p.CreatedAfter.UTC()))
	}
	if p.CreatedBefore != nil {
		preds = append(preds, entsql.LTE("created_at", p.CreatedBefore.UTC()))
	}
	if len(preds) == 0 {
		return nil
	}
	return entsql.And(preds...)
}

// orderColumns renders bound order terms for the ent selector.
func orderColumns(terms []filterexpr.OrderTerm) []string {
	return lo.Map(terms, func(t filterexpr.OrderTerm, _ int) string {
		if t.Desc {
			return entsql.Desc(t.Column)
		}
		return entsql.Asc(t.Column)
	})
}

type AuditRepository struct {
	store *Store
}

func NewAuditRepository(store *Store) repository.AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) Create(ctx context.Context, audit *entity.IngestAudit) (*entity.IngestAudit, error) {
	return insertAudit(ctx, r.store, r.store.db, audit)
}

const auditTable = "custom_hebrew_ingest_audits"

var auditColumns = []string{
	"id", "custom_hebrew_book_id", "chapter_number", "actor_user_id", "status", "exact_bible_match",
	"verse_count", "token_count", "known_token_count", "new_token_count", "override_count", "summary", "created_at",
}

func (r *AuditRepository) List(ctx context.Context, query *repository.ListAuditQuery) ([]entity.IngestAudit, int64, error) {
	var params listAuditsParams
	terms, err := filterexpr.Bind(query, &params, listAuditsSchema)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}

	// predicates keep builder state, so each statement gets its own
	b := r.store.builder()
	count := b.Select(entsql.Count("*")).From(b.Table(auditTable))
	if where := params.predicate(); where != nil {
		count.Where(where)
	}
	var total int64
	if err := r.store.queryRow(ctx, r.store.db, count).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ingest audits: %w", err)
	}

	stmt := b.Select(auditColumns...).From(b.Table(auditTable)).OrderBy(orderColumns(terms)...)
	if where := params.predicate(); where != nil {
		stmt.Where(where)
	}
	if query.PageSize > 0 {
		stmt.Limit(int(query.PageSize)).Offset(int(query.Offset()))
	}

	rows, err := r.store.query(ctx, r.store.db, stmt)
	if err != nil {
		return nil, 0, fmt.Errorf("list ingest audits: %w", err)
	}
	defer rows.Close()

	results := make([]entity.IngestAudit, 0)
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ingest audit: %w", err)
		}
		results = append(results, *audit)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list ingest audits: %w", err)
	}
	return results, total, nil
}

func insertAudit(ctx context.Context, store *Store, q querier, audit *entity.IngestAudit) (*entity.IngestAudit, error) {
	out := *audit
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	out.CreatedAt = out.CreatedAt.UTC()
	stmt := store.builder().Insert(auditTable).
		Columns(auditColumns[1:]...).
		Values(
			out.BookID, out.ChapterNumber, nullString(out.ActorID), string(out.Status), out.ExactBibleMatch,
			out.VerseCount, out.TokenCount, out.KnownTokenCount, out.NewTokenCount, out.OverrideCount,
			out.Summary, out.CreatedAt,
		).
		Returning("id")
	if err := store.queryRow(ctx, q, stmt).Scan(&out.ID); err != nil {
		return nil, fmt.Errorf("insert ingest audit: %w", err)
	}
	return &out, nil
}

func scanAudit(row rowScanner) (*entity.IngestAudit, error) {
	var (
		audit  entity.IngestAudit
		actor  sql.NullString
		status string
	)
	if err := row.Scan(&audit.ID, &audit.BookID, &audit.ChapterNumber, &actor, &status, &audit.ExactBibleMatch,
		&audit.VerseCount, &audit.TokenCount, &audit.KnownTokenCount, &audit.NewTokenCount, &audit.OverrideCount,
		&audit.Summary, &audit.CreatedAt); err != nil {
		return nil, err
	}
	audit.ActorID = actor.String
	audit.Status = entity.IngestStatus(status)
	return &audit, nil
}
