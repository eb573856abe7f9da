// Package cups submits print jobs to CUPS or to a spool directory.
package cups

import "github.com/kailas-cloud/kidprint/internal/domain"

// PicturePrefix marks picture requests until pictures are rendered.
const PicturePrefix = "Kuva-pyyntö: "

// Render returns the text printed for job.
func Render(job domain.PrintJob) string {
	if job.Kind == domain.JobPicture {
		return PicturePrefix + job.Text
	}
	return job.Text
}
