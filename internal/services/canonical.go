package services

import (
	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/maxaizer/jobs-board/internal/textnorm"
)

// normalizeRecord cleans every free-text field of a raw record and keeps its upstream shape.
func normalizeRecord(r opendata.JobRecord) opendata.JobRecord {
	r.Agency = textnorm.Normalize(r.Agency)
	r.BusinessTitle = textnorm.Normalize(r.BusinessTitle)
	r.CivilServiceTitle = textnorm.Normalize(r.CivilServiceTitle)
	r.TitleClassification = textnorm.Normalize(r.TitleClassification)
	r.JobCategory = textnorm.Normalize(r.JobCategory)
	r.CareerLevel = textnorm.Normalize(r.CareerLevel)
	r.WorkLocation = textnorm.Normalize(r.WorkLocation)
	r.DivisionWorkUnit = textnorm.Normalize(r.DivisionWorkUnit)
	r.JobDescription = textnorm.Normalize(r.JobDescription)
	r.MinimumQualRequirements = textnorm.Normalize(r.MinimumQualRequirements)
	r.PreferredSkills = textnorm.Normalize(r.PreferredSkills)
	r.AdditionalInformation = textnorm.Normalize(r.AdditionalInformation)
	r.ToApply = textnorm.Normalize(r.ToApply)
	r.HoursShift = textnorm.Normalize(r.HoursShift)
	r.WorkLocation1 = textnorm.Normalize(r.WorkLocation1)
	r.ResidencyRequirement = textnorm.Normalize(r.ResidencyRequirement)
	return r
}

// ToCanonical maps a raw record to the canonical job shape. The description is laid out into
// paragraphs and list items, other free-text fields are normalized.
func ToCanonical(r opendata.JobRecord) entities.Job {
	clean := normalizeRecord(r)

	return entities.Job{
		JobID:                     r.JobID,
		BusinessTitle:             clean.BusinessTitle,
		CivilServiceTitle:         clean.CivilServiceTitle,
		TitleCodeNo:               r.TitleCodeNo,
		Level:                     r.Level,
		JobCategory:               clean.JobCategory,
		FullTimePartTimeIndicator: r.FullTimePartTimeIndicator,
		SalaryRangeFrom:           optionalAmount(r.SalaryFrom()),
		SalaryRangeTo:             optionalAmount(r.SalaryTo()),
		SalaryFrequency:           r.SalaryFrequency,
		WorkLocation:              clean.WorkLocation,
		DivisionWorkUnit:          clean.DivisionWorkUnit,
		JobDescription:            textnorm.FormatDescription(r.JobDescription),
		MinimumQualRequirements:   clean.MinimumQualRequirements,
		PreferredSkills:           clean.PreferredSkills,
		AdditionalInformation:     clean.AdditionalInformation,
		ToApply:                   clean.ToApply,
		HoursShift:                clean.HoursShift,
		WorkLocation1:             clean.WorkLocation1,
		ResidencyRequirement:      clean.ResidencyRequirement,
		PostDate:                  r.PostingDate,
		PostingUpdated:            r.PostingUpdated,
		ProcessDate:               r.ProcessDate,
		PostUntil:                 r.PostUntil,
		Agency:                    clean.Agency,
		PostingType:               r.PostingType,
		NumberOfPositions:         r.NumberOfPositions,
		TitleClassification:       clean.TitleClassification,
		CareerLevel:               clean.CareerLevel,
	}
}

func optionalAmount(amount float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &amount
}
