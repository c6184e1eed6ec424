package entity

import "time"

// WorkOrder orden de trabajo de mantenimiento. Purchase orders attach to a
// work order (or a plant) as their attribution anchor; the workflow engine
// only needs existence and identity from this side.
type WorkOrder struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Code        string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	PlantID     *string    `json:"plant_id" gorm:"size:32;index"`
	AssetCode   string     `json:"asset_code" gorm:"size:50"`
	Description string     `json:"description" gorm:"type:text"`
	Priority    string     `json:"priority" gorm:"size:20;default:normal"`
	Status      string     `json:"status" gorm:"size:20;default:open"` // open/in_progress/completed
	AssignedTo  *string    `json:"assigned_to" gorm:"size:32"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

// Plant planta de concreto
type Plant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Code      string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Location  string    `json:"location" gorm:"size:500"`
	Status    string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plant) TableName() string {
	return "plants"
}
