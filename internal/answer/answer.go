// Package answer renders natural-language responses from a resolved profile,
// a category, and an optional refinement. Rendering is pure string
// formatting over the already-loaded record; every list access guards
// against absent or empty fields.
package answer

import (
	"fmt"
	"strings"

	"github.com/sreejagatab/linkedin-qbot/internal/classify"
	"github.com/sreejagatab/linkedin-qbot/internal/profile"
	"github.com/sreejagatab/linkedin-qbot/internal/refine"
)

// Synthesize renders the answer for one query. refinement may be nil.
func Synthesize(rec profile.Record, category classify.Category, refinement *refine.Refinement) string {
	switch category {
	case classify.Education:
		return renderEducation(rec, refinement)
	case classify.Experience:
		return renderExperience(rec, refinement)
	case classify.Skills:
		return renderSkills(rec)
	case classify.Languages:
		return renderLanguages(rec)
	case classify.Certifications:
		return renderCertifications(rec)
	case classify.Location:
		return renderLocation(rec)
	case classify.Contact:
		return renderContact(rec)
	default:
		return renderGeneral(rec)
	}
}

func renderEducation(rec profile.Record, refinement *refine.Refinement) string {
	name := rec.Basics.Name
	if len(rec.Education) == 0 {
		return fmt.Sprintf("%s has no education information in their profile.", name)
	}

	if refinement != nil {
		switch refinement.Kind {
		case refine.Highest:
			// Education is stored most recent first; the head is the
			// highest degree.
			edu := rec.Education[0]
			return fmt.Sprintf("%s's highest education is %s from %s (%s).", name, edu.Degree, edu.Institution, edu.DateRange)
		case refine.DegreeLevel:
			for _, edu := range rec.Education {
				if strings.Contains(strings.ToLower(edu.Degree), strings.ToLower(refinement.Value)) {
					return fmt.Sprintf("%s has a %s from %s (%s).", name, edu.Degree, edu.Institution, edu.DateRange)
				}
			}
			return fmt.Sprintf("Could not find a %s degree for %s.", refinement.Value, name)
		}
	}

	entries := make([]string, len(rec.Education))
	for i, edu := range rec.Education {
		entries[i] = fmt.Sprintf("%s from %s (%s)", edu.Degree, edu.Institution, edu.DateRange)
	}
	return fmt.Sprintf("%s's education: %s.", name, strings.Join(entries, "; "))
}

func renderExperience(rec profile.Record, refinement *refine.Refinement) string {
	name := rec.Basics.Name
	if len(rec.Experience) == 0 {
		return fmt.Sprintf("%s has no work experience information in their profile.", name)
	}

	if refinement != nil {
		switch refinement.Kind {
		case refine.Current:
			job := rec.Experience[0]
			return fmt.Sprintf("%s currently works as %s at %s (%s).", name, job.Title, job.Company, job.Duration)
		case refine.Previous:
			if len(rec.Experience) > 1 {
				job := rec.Experience[1]
				return fmt.Sprintf("%s previously worked as %s at %s (%s).", name, job.Title, job.Company, job.Duration)
			}
			return fmt.Sprintf("No previous job experience found for %s before their current role.", name)
		case refine.Company:
			for _, job := range rec.Experience {
				if strings.Contains(strings.ToLower(job.Company), strings.ToLower(refinement.Value)) {
					return fmt.Sprintf("%s worked as %s at %s (%s).", name, job.Title, job.Company, job.Duration)
				}
			}
			return fmt.Sprintf("Could not find experience at %s for %s.", refinement.Value, name)
		}
	}

	entries := make([]string, len(rec.Experience))
	for i, job := range rec.Experience {
		entries[i] = fmt.Sprintf("%s at %s (%s)", job.Title, job.Company, job.Duration)
	}
	return fmt.Sprintf("%s's work experience: %s.", name, strings.Join(entries, "; "))
}

func renderSkills(rec profile.Record) string {
	if len(rec.Skills) == 0 {
		return fmt.Sprintf("%s has no skills listed in their profile.", rec.Basics.Name)
	}
	return fmt.Sprintf("%s's skills include: %s.", rec.Basics.Name, strings.Join(rec.Skills, ", "))
}

func renderLanguages(rec profile.Record) string {
	if len(rec.Languages) == 0 {
		return fmt.Sprintf("%s has no language information in their profile.", rec.Basics.Name)
	}
	entries := make([]string, len(rec.Languages))
	for i, lang := range rec.Languages {
		entries[i] = fmt.Sprintf("%s (%s)", lang.Language, lang.Proficiency)
	}
	return fmt.Sprintf("%s speaks: %s.", rec.Basics.Name, strings.Join(entries, ", "))
}

func renderCertifications(rec profile.Record) string {
	if len(rec.Certifications) == 0 {
		return fmt.Sprintf("%s has no certifications listed in their profile.", rec.Basics.Name)
	}
	entries := make([]string, len(rec.Certifications))
	for i, cert := range rec.Certifications {
		entries[i] = fmt.Sprintf("%s from %s (%s)", cert.Name, cert.Issuer, cert.Date)
	}
	return fmt.Sprintf("%s's certifications: %s.", rec.Basics.Name, strings.Join(entries, "; "))
}

func renderLocation(rec profile.Record) string {
	location := rec.Basics.Location
	if location == "" {
		location = "Unknown"
	}
	return fmt.Sprintf("%s is located in %s.", rec.Basics.Name, location)
}

func renderContact(rec profile.Record) string {
	if rec.ContactInfo == nil {
		return fmt.Sprintf("No contact information available for %s.", rec.Basics.Name)
	}
	email := rec.ContactInfo.Email
	if email == "" {
		email = "Not provided"
	}
	phone := rec.ContactInfo.Phone
	if phone == "" {
		phone = "Not provided"
	}
	return fmt.Sprintf("Contact information for %s: Email: %s, Phone: %s.", rec.Basics.Name, email, phone)
}

func renderGeneral(rec profile.Record) string {
	headline := rec.Basics.Headline
	if headline == "" {
		headline = "professional"
	}
	location := rec.Basics.Location
	if location == "" {
		location = "an unknown location"
	}

	parts := []string{
		fmt.Sprintf("%s is a %s", rec.Basics.Name, headline),
		fmt.Sprintf("based in %s.", location),
	}

	if rec.Basics.Summary != "" {
		parts = append(parts, fmt.Sprintf("Summary: %s", rec.Basics.Summary))
	}
	if len(rec.Experience) > 0 {
		job := rec.Experience[0]
		parts = append(parts, fmt.Sprintf("Currently working as %s at %s.", job.Title, job.Company))
	}
	if len(rec.Education) > 0 {
		edu := rec.Education[0]
		parts = append(parts, fmt.Sprintf("Has studied %s at %s.", edu.Degree, edu.Institution))
	}

	return strings.Join(parts, " ")
}
