package histarchive

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hopemarket/native/market"
)

// Archive subscribes to settlement events and mirrors them into a relational
// store. It satisfies market.Emitter so it can be attached directly to the
// engine; events other than settled sales are ignored.
type Archive struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens (or creates) the archive database at path. Use ":memory:" for
// an ephemeral archive.
func Open(path string, log *slog.Logger) (*Archive, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Archive{db: db, logger: log}, nil
}

// Emit implements market.Emitter. Archive failures are logged and swallowed:
// the ledger has already committed and must not be held hostage by the
// reporting mirror.
func (a *Archive) Emit(evt market.Event) {
	settled, ok := evt.(market.SaleSettled)
	if !ok {
		return
	}
	sale := settled.Sale
	row := Sale{
		Collection: sale.Collection,
		TokenID:    sale.TokenID,
		Seller:     sale.From,
		Buyer:      sale.To,
		Denom:      sale.Denom,
		Amount:     sale.Amount.String(),
		SoldAt:     sale.Time,
	}
	if err := a.db.Create(&row).Error; err != nil {
		a.logger.Error("archive sale", "collection", sale.Collection, "token", sale.TokenID, "err", err)
	}
}

// RecentSales returns the newest sales across all collections, newest first.
func (a *Archive) RecentSales(limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []Sale
	err := a.db.Order("sold_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// SalesByCollection returns a collection's sales, oldest first.
func (a *Archive) SalesByCollection(collection string, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []Sale
	err := a.db.Where("collection = ?", collection).Order("sold_at ASC, id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// VolumeByDenom sums a collection's sale volume per denomination. Amounts are
// summed as decimals to avoid integer overflow in SQL.
func (a *Archive) VolumeByDenom(collection string) (map[string]decimal.Decimal, error) {
	var rows []Sale
	if err := a.db.Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt archive amount %q: %w", row.Amount, err)
		}
		out[row.Denom] = out[row.Denom].Add(amount)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
