package db_models

// BaseModel carries the store-generated bigserial id shared by every table.
type BaseModel struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
}
