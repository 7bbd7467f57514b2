package ports

import "context"

// Tx is an opaque transaction handle. Infrastructure owns the concrete type (*gorm.DB).
type Tx interface{}

// UnitOfWork is a callback transaction boundary: a returned error rolls back,
// nil commits. Calling WithTx with a context that already carries a transaction
// joins it instead of opening a second one.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
