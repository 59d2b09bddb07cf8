package histarchive

import (
	"time"

	"gorm.io/gorm"
)

// Sale mirrors one settled sale out of the ledger into SQL so reporting
// queries do not touch the node's key-value store.
type Sale struct {
	ID         uint   `gorm:"primaryKey"`
	Collection string `gorm:"index:idx_sales_item;index"`
	TokenID    string `gorm:"index:idx_sales_item"`
	Seller     string `gorm:"index"`
	Buyer      string `gorm:"index"`
	Denom      string `gorm:"index"`
	// Amount is kept as a decimal string; sale amounts routinely exceed
	// what SQLite integers hold safely.
	Amount    string
	SoldAt    uint64 `gorm:"index"`
	CreatedAt time.Time
}

// AutoMigrate creates or upgrades the archive schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Sale{})
}
