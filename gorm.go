package rql

import (
	"github.com/nlstn/go-rql/internal/observability"
	"github.com/nlstn/go-rql/internal/sqlfilter"
	"gorm.io/gorm"
)

// Apply adds b's predicates to db as a Where clause and its projected fields
// as a Select. Dialects other than sqlite, postgres and mysql get sqlite
// syntax and a Warn log. Errors are attached to the returned *gorm.DB:
//
//	var products []Product
//	err := rql.Apply(db.Model(&Product{}), b).Find(&products).Error
func Apply(db *gorm.DB, b *Builder) *gorm.DB {
	if err := b.Err(); err != nil {
		_ = db.AddError(err)
		return db
	}

	if b.HasCriteria() {
		ctx, span := b.startCompile(observability.BackendSQL)
		name := db.Dialector.Name()
		d, err := sqlfilter.DialectFor(name)
		if err != nil {
			observability.LoggerWithTrace(ctx, b.engine.log()).Warn("rql unknown gorm dialect, using sqlite syntax",
				"dialect", name)
			d = sqlfilter.SQLite
		}
		where, params, err := sqlfilter.Compile(b.preds, d.Unnumbered())
		if err != nil {
			b.compileFailed(ctx, span, err)
			span.End()
			_ = db.AddError(err)
			return db
		}
		span.End()
		db = db.Where(where, params...)
	}

	if cols := b.Columns(); len(cols) > 0 {
		db = db.Select(cols)
	}
	return db
}

// InstrumentDB registers query tracing callbacks on db when the engine was
// created with WithDBTracing.
func (e *Engine) InstrumentDB(db *gorm.DB) error {
	return observability.RegisterGORMCallbacks(db, e.obs)
}
