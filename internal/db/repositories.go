package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	Hours        *HourRepository
	Deliverables *DeliverableRepository
	LeadRecords  *LeadRecordRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		Hours:        NewHourRepository(database),
		Deliverables: NewDeliverableRepository(database),
		LeadRecords:  NewLeadRecordRepository(database),
	}
}
