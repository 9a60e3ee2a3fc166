package fullrecord

import "context"

// Source provides the full record for a share token.
type Source interface {
	Get(ctx context.Context, token string) (*Record, error)
}

// StaticSource serves the reference document for every token.
type StaticSource struct{}

func NewStaticSource() *StaticSource { return &StaticSource{} }

func (StaticSource) Get(context.Context, string) (*Record, error) {
	return Reference(), nil
}
