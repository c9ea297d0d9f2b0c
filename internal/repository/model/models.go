package model

import "time"

type Appointment struct {
	ID              string     `gorm:"size:24;primaryKey"`
	DoctorID        int64      `gorm:"index;not null"`
	CreatedBy       string     `gorm:"size:255;index;not null"`
	Date            string     `gorm:"size:64"`
	AppointmentDate *time.Time `gorm:"index"`
	Reason          string     `gorm:"size:1024"`
	Status          string     `gorm:"size:32;index;not null;default:booked"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

type Doctor struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Specialty string `gorm:"size:255"`
}

type TelemedicineMessage struct {
	ID            string    `gorm:"size:36;primaryKey"`
	AppointmentID string    `gorm:"size:24;index;not null"`
	RoomID        string    `gorm:"size:128;index;not null"`
	SenderEmail   string    `gorm:"size:255;index;not null"`
	SenderRole    string    `gorm:"size:32;not null"`
	MessageType   string    `gorm:"size:32;index;not null;default:chat"`
	Text          string    `gorm:"size:1000;not null"`
	CreatedAt     time.Time `gorm:"index;not null"`
}

type TelemedicineEvent struct {
	ID                 string            `gorm:"size:36;primaryKey"`
	AppointmentID      string            `gorm:"size:24;index;not null"`
	RoomID             string            `gorm:"size:128;index;not null"`
	EventType          string            `gorm:"size:32;index;not null"`
	ActorEmail         string            `gorm:"size:255;index"`
	ActorRole          string            `gorm:"size:32"`
	TargetConnectionID string            `gorm:"size:64"`
	Metadata           map[string]string `gorm:"serializer:json"`
	CreatedAt          time.Time         `gorm:"index;not null"`
}
