package entities

import "time"

// Job is the canonical job shape served to clients and persisted when a user saves a job.
// IsSaved is computed per request and never stored.
type Job struct {
	ID                        uint     `gorm:"primaryKey" json:"-"`
	JobID                     string   `gorm:"uniqueIndex;not null" json:"jobId"`
	BusinessTitle             string   `json:"businessTitle"`
	CivilServiceTitle         string   `json:"civilServiceTitle,omitempty"`
	TitleCodeNo               string   `json:"titleCodeNo,omitempty"`
	Level                     string   `json:"level,omitempty"`
	JobCategory               string   `gorm:"index" json:"jobCategory,omitempty"`
	FullTimePartTimeIndicator string   `json:"fullTimePartTimeIndicator,omitempty"`
	SalaryRangeFrom           *float64 `json:"salaryRangeFrom,omitempty"`
	SalaryRangeTo             *float64 `json:"salaryRangeTo,omitempty"`
	SalaryFrequency           string   `json:"salaryFrequency,omitempty"`
	WorkLocation              string   `json:"workLocation,omitempty"`
	DivisionWorkUnit          string   `json:"divisionWorkUnit,omitempty"`
	JobDescription            string   `json:"jobDescription,omitempty"`
	MinimumQualRequirements   string   `json:"minimumQualRequirements,omitempty"`
	PreferredSkills           string   `json:"preferredSkills,omitempty"`
	AdditionalInformation     string   `json:"additionalInformation,omitempty"`
	ToApply                   string   `json:"toApply,omitempty"`
	HoursShift                string   `json:"hoursShift,omitempty"`
	WorkLocation1             string   `json:"workLocation1,omitempty"`
	ResidencyRequirement      string   `json:"residencyRequirement,omitempty"`
	PostDate                  string   `json:"postDate,omitempty"`
	PostingUpdated            string   `json:"postingUpdated,omitempty"`
	ProcessDate               string   `json:"processDate,omitempty"`
	PostUntil                 string   `json:"postUntil,omitempty"`
	Agency                    string   `json:"agency,omitempty"`
	PostingType               string   `json:"postingType,omitempty"`
	NumberOfPositions         string   `json:"numberOfPositions,omitempty"`
	TitleClassification       string   `json:"titleClassification,omitempty"`
	CareerLevel               string   `json:"careerLevel,omitempty"`

	IsSaved bool `gorm:"-" json:"isSaved"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// SavedJob records that a user bookmarked a job.
type SavedJob struct {
	ID      int
	UserID  string `gorm:"uniqueIndex:idx_saved_user_job;not null"`
	JobID   string `gorm:"uniqueIndex:idx_saved_user_job;not null"`
	SavedAt time.Time
}
