package emergency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type shareRepoPG struct{ conn queryable }

func NewShareRepoPG(pool *pgxpool.Pool) ShareRepository { return &shareRepoPG{conn: pool} }

func (r *shareRepoPG) GetByToken(ctx context.Context, token string) (*View, error) {
	var (
		publicView []byte
		isAuth     bool
	)
	err := r.conn.QueryRow(ctx, `
		SELECT public_view, is_authenticated FROM emergency_share
		WHERE token = $1 AND revoked_at IS NULL`, token).Scan(&publicView, &isAuth)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query share: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(publicView, &rec); err != nil {
		return nil, fmt.Errorf("decode share %q: %w", token, err)
	}
	return &View{PublicView: &rec, IsAuthenticated: isAuth}, nil
}

func (r *shareRepoPG) Put(ctx context.Context, token string, v *View) error {
	data, err := json.Marshal(v.PublicView)
	if err != nil {
		return fmt.Errorf("encode share %q: %w", token, err)
	}
	_, err = r.conn.Exec(ctx, `
		INSERT INTO emergency_share (token, public_view, is_authenticated)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
		SET public_view = EXCLUDED.public_view,
			is_authenticated = EXCLUDED.is_authenticated,
			revoked_at = NULL,
			updated_at = NOW()`,
		token, data, v.IsAuthenticated)
	return err
}
