package clicks

// ClickEvent records one visitor being redirected to the WhatsApp chat link.
// Rows are append-only; the JSON field names are the admin dashboard's wire
// contract and the column names match the original clicks table layout.
type ClickEvent struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TS       int64  `gorm:"column:ts;not null;index:idx_clicks_ts" json:"ts"`
	IP       string `gorm:"column:ip;type:text" json:"ip"`
	Text     string `gorm:"column:text;type:text" json:"text"`
	Referrer string `gorm:"column:referrer;type:text" json:"referrer"`
}

// TableName provides the explicit table binding for GORM.
func (ClickEvent) TableName() string {
	return "clicks"
}
