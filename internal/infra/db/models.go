package db

import "time"

type FederationModel struct {
	ID                  string    `gorm:"primaryKey"`
	Name                string    `gorm:"not null"`
	Public              bool      `gorm:"not null;index"`
	InformationModel    string    `gorm:"not null"`
	SLAConstraintsJSON  []byte    `gorm:"column:sla_constraints;type:jsonb;not null"`
	MembersJSON         []byte    `gorm:"column:members;type:jsonb;not null"`
	OpenInvitationsJSON []byte    `gorm:"column:open_invitations;type:jsonb;not null"`
	LastModified        time.Time `gorm:"not null"`
	CreatedAt           time.Time `gorm:"not null"`
}

func (FederationModel) TableName() string {
	return "federations"
}
