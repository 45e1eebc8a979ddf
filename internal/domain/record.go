// Package domain holds the record entity.
package domain

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"records-backend/pkg/utils"
)

// Record is the user entity stored in the table. The id is the sole partition
// key and is generated server-side; createdAt is set once at creation and
// never touched by updates. Name and email are pointers because an update can
// write either field back as null.
type Record struct {
	ID        string  `json:"id" dynamodbav:"RecordID"`
	Name      *string `json:"name" dynamodbav:"Name"`
	Email     *string `json:"email" dynamodbav:"Email"`
	CreatedAt string  `json:"createdAt" dynamodbav:"CreatedAt"`
}

// NewRecord creates a record with a fresh id and creation timestamp.
func NewRecord(name, email string) Record {
	return Record{
		ID:        uuid.New().String(),
		Name:      lo.ToPtr(name),
		Email:     lo.ToPtr(email),
		CreatedAt: utils.NowRFC3339(),
	}
}
