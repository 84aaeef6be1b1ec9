package device

import (
	"fmt"

	"coopcontrol/internal/storage"
)

// Application is a named consumer of the coop hardware
type Application struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Name   string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Status AppStatus `gorm:"not null;default:1" json:"status"`
	storage.Timestamps
}

// TableName pins the table name
func (Application) TableName() string {
	return "application"
}

func (a Application) String() string {
	return fmt.Sprintf("<Application %d %s %s>", a.ID, a.Name, a.Status)
}

// Hardware is a switchable device wired to the controller. Pins are recorded
// only; nothing drives them.
type Hardware struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;uniqueIndex;not null" json:"name"`
	AppID       uint           `gorm:"not null" json:"app_id"`
	BCMPinWrite int            `gorm:"not null" json:"bcm_pin_write"`
	BCMPinRead  int            `gorm:"not null" json:"bcm_pin_read"`
	Status      HardwareStatus `gorm:"not null;default:3" json:"status"`
	storage.Timestamps
}

// TableName pins the table name
func (Hardware) TableName() string {
	return "hardware"
}

func (h Hardware) String() string {
	return fmt.Sprintf("<Hardware %d %s %s app=%d write=%d read=%d>",
		h.ID, h.Name, h.Status, h.AppID, h.BCMPinWrite, h.BCMPinRead)
}

// HardwareInput carries the fields to change. Nil fields are left alone.
type HardwareInput struct {
	AppID       *uint           `validate:"omitempty,gte=1"`
	BCMPinWrite *int            `validate:"omitempty,gte=0,lte=63"`
	BCMPinRead  *int            `validate:"omitempty,gte=0,lte=63"`
	Status      *HardwareStatus `validate:"omitempty,gte=1,lte=3"`
}
