package messages

// InboundMessage is one normalized WhatsApp message received via the webhook.
// MessageID is the platform's own identifier and the sole deduplication key:
// redelivery of the same id never produces a second row. TS is the receipt
// time at this server, not the platform's timestamp.
type InboundMessage struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TS          int64  `gorm:"column:ts;not null;index:idx_messages_ts" json:"ts"`
	FromPhone   string `gorm:"column:from_phone;type:text" json:"from_phone"`
	MessageText string `gorm:"column:message_text;type:text" json:"message_text"`
	MessageID   string `gorm:"column:message_id;type:text;uniqueIndex:idx_messages_message_id" json:"message_id"`
}

// TableName provides the explicit table binding for GORM.
func (InboundMessage) TableName() string {
	return "messages"
}
