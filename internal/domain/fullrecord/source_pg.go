package fullrecord

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads full records from the full_record_section table. Tokens
// without any stored section get the reference document.
type PGSource struct {
	pool *pgxpool.Pool
}

func NewPGSource(pool *pgxpool.Pool) *PGSource { return &PGSource{pool: pool} }

func (s *PGSource) Get(ctx context.Context, token string) (*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT section_id, title, layout, items FROM full_record_section
		WHERE token = $1 ORDER BY position`, token)
	if err != nil {
		return nil, fmt.Errorf("query full record: %w", err)
	}
	defer rows.Close()

	rec := &Record{}
	for rows.Next() {
		var (
			sec    Section
			layout string
			items  []byte
		)
		if err := rows.Scan(&sec.ID, &sec.Title, &layout, &items); err != nil {
			return nil, fmt.Errorf("scan full record section: %w", err)
		}
		sec.Layout = Layout(layout)
		if err := json.Unmarshal(items, &sec.Items); err != nil {
			return nil, fmt.Errorf("decode items of section %q: %w", sec.ID, err)
		}
		rec.Sections = append(rec.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate full record sections: %w", err)
	}

	if len(rec.Sections) == 0 {
		return Reference(), nil
	}
	return rec, nil
}

// Put replaces the stored sections for token, preserving their order.
func (s *PGSource) Put(ctx context.Context, token string, rec *Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM full_record_section WHERE token = $1`, token); err != nil {
		return fmt.Errorf("clear full record: %w", err)
	}
	for i, sec := range rec.Sections {
		items, err := json.Marshal(sec.Items)
		if err != nil {
			return fmt.Errorf("encode items of section %q: %w", sec.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO full_record_section (token, position, section_id, title, layout, items)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			token, i, sec.ID, sec.Title, string(sec.Layout), items); err != nil {
			return fmt.Errorf("insert section %q: %w", sec.ID, err)
		}
	}
	return tx.Commit(ctx)
}
