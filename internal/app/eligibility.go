package app

import (
	"time"

	"placement/internal/common"
	"placement/internal/domain/job"
	"placement/internal/domain/profile"
)

// checkJobRules applies the job-local gates in order: open window, department, CGPA.
func checkJobRules(item job.Job, student *profile.StudentProfile, now time.Time) error {
	if !item.AcceptsApplications(now) {
		return common.NewError(common.CodeClosed, "job is closed for applications", nil)
	}
	if student == nil {
		return common.NewError(common.CodeIneligible, "student profile is required", nil)
	}
	if !item.AllowsDepartment(student.Department) {
		return common.NewError(common.CodeIneligible, "department is not eligible for this job", nil)
	}
	if student.CGPA < item.MinCGPA {
		return common.NewError(common.CodeIneligible, "cgpa is below the required minimum", nil)
	}
	return nil
}
